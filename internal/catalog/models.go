package catalog

import (
	"time"

	"channelling/internal/lifecycle"
)

// Reference ids are bare ids. Nothing checks that the referenced record exists.

// -----------------------------------------------------------------------------
// Shared field groups
// -----------------------------------------------------------------------------

// Address is the three-line postal address used by people and hospitals.
type Address struct {
	AddressLine1 string `json:"address_line1" validate:"max=255"`
	AddressLine2 string `json:"address_line2" validate:"max=255"`
	AddressLine3 string `json:"address_line3" validate:"max=255"`
}

// Person holds the identity and contact details shared by doctors, patients and
// user profiles.
type Person struct {
	FirstName            string `json:"first_name" validate:"required,max=255"`
	LastName             string `json:"last_name" validate:"max=255"`
	DisplayName          string `json:"display_name" validate:"max=255"`
	IdentificationMethod string `json:"identification_method" validate:"required,oneof=NIC PASSPORT DRIVING_LICENSE"`
	IdentificationValue  string `json:"identification_value" validate:"required,max=20"`
	MobileNo1            string `json:"mobile_no1,omitempty" validate:"max=20"`
	MobileNo2            string `json:"mobile_no2,omitempty" validate:"max=20"`
	Email                string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

// -----------------------------------------------------------------------------
// Geography
// -----------------------------------------------------------------------------

type Country struct {
	lifecycle.Envelope
	lifecycle.Definition
	ISOCode string `json:"iso_code" validate:"max=10"`
}

func (c *Country) CopyFrom(src *Country) {
	c.CopyDescription(&src.Definition)
	c.ISOCode = src.ISOCode
}

type State struct {
	lifecycle.Envelope
	Name      string `json:"name" validate:"required,max=100"`
	CountryID int64  `json:"country_id" validate:"required"`
}

func (s *State) CopyFrom(src *State) {
	s.Name = src.Name
	s.CountryID = src.CountryID
}

type City struct {
	lifecycle.Envelope
	Name    string `json:"name" validate:"required,max=100"`
	StateID int64  `json:"state_id" validate:"required"`
}

func (c *City) CopyFrom(src *City) {
	c.Name = src.Name
	c.StateID = src.StateID
}

// -----------------------------------------------------------------------------
// Code-bearing definitions
// -----------------------------------------------------------------------------

type Institution struct {
	lifecycle.Envelope
	lifecycle.Definition
	CountryID int64 `json:"country_id" validate:"required"`
}

func (i *Institution) CopyFrom(src *Institution) {
	i.CopyDescription(&src.Definition)
	i.CountryID = src.CountryID
}

type Specialization struct {
	lifecycle.Envelope
	lifecycle.Definition
}

func (s *Specialization) CopyFrom(src *Specialization) {
	s.CopyDescription(&src.Definition)
}

type QualificationLevel struct {
	lifecycle.Envelope
	lifecycle.Definition
}

func (q *QualificationLevel) CopyFrom(src *QualificationLevel) {
	q.CopyDescription(&src.Definition)
}

type Qualification struct {
	lifecycle.Envelope
	lifecycle.Definition
	QualificationLevelID int64 `json:"qualification_level_id" validate:"required"`
}

func (q *Qualification) CopyFrom(src *Qualification) {
	q.CopyDescription(&src.Definition)
	q.QualificationLevelID = src.QualificationLevelID
}

// TransactionType describes a fee component. CalculationMethod says whether
// AmountRate is a fixed amount or a percentage.
type TransactionType struct {
	lifecycle.Envelope
	lifecycle.Definition
	CalculationMethod string  `json:"calculation_method" validate:"required,oneof=AMOUNT RATE"`
	AmountRate        float64 `json:"amount_rate" validate:"gte=0"`
}

func (t *TransactionType) CopyFrom(src *TransactionType) {
	t.CopyDescription(&src.Definition)
	t.CalculationMethod = src.CalculationMethod
	t.AmountRate = src.AmountRate
}

type ContactMethod struct {
	lifecycle.Envelope
	lifecycle.Definition
}

func (c *ContactMethod) CopyFrom(src *ContactMethod) {
	c.CopyDescription(&src.Definition)
}

type Title struct {
	lifecycle.Envelope
	lifecycle.Definition
}

func (t *Title) CopyFrom(src *Title) {
	t.CopyDescription(&src.Definition)
}

// -----------------------------------------------------------------------------
// Providers
// -----------------------------------------------------------------------------

type Hospital struct {
	lifecycle.Envelope
	Name        string `json:"name" validate:"required,max=255"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
	BRNo        string `json:"br_no" validate:"required,max=100"`
	Address
	HospitalFee float64 `json:"hospital_fee" validate:"gte=0"`
	CityID      int64   `json:"city_id" validate:"required"`
}

func (h *Hospital) CopyFrom(src *Hospital) {
	h.Name = src.Name
	h.DisplayName = src.DisplayName
	h.BRNo = src.BRNo
	h.Address = src.Address
	h.HospitalFee = src.HospitalFee
	h.CityID = src.CityID
}

type Doctor struct {
	lifecycle.Envelope
	Person
	CityID         int64  `json:"city_id" validate:"required"`
	RegistrationNo string `json:"registration_no" validate:"required,max=100"`
	TitleID        int64  `json:"title_id" validate:"required"`
}

func (d *Doctor) CopyFrom(src *Doctor) {
	d.Person = src.Person
	d.CityID = src.CityID
	d.RegistrationNo = src.RegistrationNo
	d.TitleID = src.TitleID
}

type DoctorSpeciality struct {
	lifecycle.Envelope
	DoctorID     int64 `json:"doctor_id" validate:"required"`
	SpecialityID int64 `json:"speciality_id" validate:"required"`
}

func (d *DoctorSpeciality) CopyFrom(src *DoctorSpeciality) {
	d.DoctorID = src.DoctorID
	d.SpecialityID = src.SpecialityID
}

type DoctorQualification struct {
	lifecycle.Envelope
	StartDate            string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Remarks              string `json:"remarks,omitempty" validate:"max=255"`
	Grade                string `json:"grade,omitempty" validate:"max=20"`
	DoctorID             int64  `json:"doctor_id" validate:"required"`
	InstitutionID        int64  `json:"institution_id" validate:"required"`
	QualificationLevelID int64  `json:"qualification_level_id" validate:"required"`
}

func (d *DoctorQualification) CopyFrom(src *DoctorQualification) {
	d.StartDate = src.StartDate
	d.EndDate = src.EndDate
	d.Remarks = src.Remarks
	d.Grade = src.Grade
	d.DoctorID = src.DoctorID
	d.InstitutionID = src.InstitutionID
	d.QualificationLevelID = src.QualificationLevelID
}

type DoctorSession struct {
	lifecycle.Envelope
	DoctorID        int64     `json:"doctor_id" validate:"required"`
	HospitalID      int64     `json:"hospital_id" validate:"required"`
	SessionDateTime time.Time `json:"session_date_time" validate:"required"`
	MaxPatients     int       `json:"max_patients" validate:"gte=0"`
	TotalFee        float64   `json:"total_fee" validate:"gte=0"`
}

func (d *DoctorSession) CopyFrom(src *DoctorSession) {
	d.DoctorID = src.DoctorID
	d.HospitalID = src.HospitalID
	d.SessionDateTime = src.SessionDateTime
	d.MaxPatients = src.MaxPatients
	d.TotalFee = src.TotalFee
}

// -----------------------------------------------------------------------------
// Patients and bookings
// -----------------------------------------------------------------------------

type Patient struct {
	lifecycle.Envelope
	Person
	CityID  int64 `json:"city_id" validate:"required"`
	TitleID int64 `json:"title_id"`
}

func (p *Patient) CopyFrom(src *Patient) {
	p.Person = src.Person
	p.CityID = src.CityID
	p.TitleID = src.TitleID
}

type Appointment struct {
	lifecycle.Envelope
	AppointmentStatus string `json:"appointment_status" validate:"required,oneof=BOOKED CONFIRMED CANCELLED COMPLETED"`
	PatientID         int64  `json:"patient_id" validate:"required"`
	SessionID         int64  `json:"session_id" validate:"required"`
}

func (a *Appointment) CopyFrom(src *Appointment) {
	a.AppointmentStatus = src.AppointmentStatus
	a.PatientID = src.PatientID
	a.SessionID = src.SessionID
}

// Fees is one fee line of a doctor session.
type Fees struct {
	lifecycle.Envelope
	SessionID         int64   `json:"session_id" validate:"required"`
	TransactionTypeID int64   `json:"transaction_type_id" validate:"required"`
	Amount            float64 `json:"amount" validate:"gte=0"`
}

func (f *Fees) CopyFrom(src *Fees) {
	f.SessionID = src.SessionID
	f.TransactionTypeID = src.TransactionTypeID
	f.Amount = src.Amount
}

type DoctorFees struct {
	lifecycle.Envelope
	Amount        float64    `json:"amount" validate:"gte=0"`
	TransactionID int64      `json:"transaction_id" validate:"required"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
	DoctorID      int64      `json:"doctor_id" validate:"required"`
}

func (d *DoctorFees) CopyFrom(src *DoctorFees) {
	d.Amount = src.Amount
	d.TransactionID = src.TransactionID
	d.EffectiveFrom = src.EffectiveFrom
	d.EffectiveTo = src.EffectiveTo
	d.DoctorID = src.DoctorID
}

type HospitalFees struct {
	lifecycle.Envelope
	Amount        float64    `json:"amount" validate:"gte=0"`
	HospitalID    int64      `json:"hospital_id" validate:"required"`
	TransactionID int64      `json:"transaction_id" validate:"required"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

func (h *HospitalFees) CopyFrom(src *HospitalFees) {
	h.Amount = src.Amount
	h.HospitalID = src.HospitalID
	h.TransactionID = src.TransactionID
	h.EffectiveFrom = src.EffectiveFrom
	h.EffectiveTo = src.EffectiveTo
}

type Payment struct {
	lifecycle.Envelope
	AppointmentID int64     `json:"appointment_id" validate:"required"`
	PaymentDate   time.Time `json:"payment_date" validate:"required"`
	Amount        float64   `json:"amount" validate:"gte=0"`
	PaymentMethod string    `json:"payment_method" validate:"omitempty,oneof=CASH CARD ONLINE"`
}

func (p *Payment) CopyFrom(src *Payment) {
	p.AppointmentID = src.AppointmentID
	p.PaymentDate = src.PaymentDate
	p.Amount = src.Amount
	p.PaymentMethod = src.PaymentMethod
}

// -----------------------------------------------------------------------------
// Ratings
// -----------------------------------------------------------------------------

type RatingCategory struct {
	lifecycle.Envelope
	CategoryName string `json:"category_name" validate:"required,max=100"`
}

func (r *RatingCategory) CopyFrom(src *RatingCategory) {
	r.CategoryName = src.CategoryName
}

// RatingDetails is the body shared by doctor and hospital ratings.
type RatingDetails struct {
	PatientID  int64     `json:"patient_id" validate:"required"`
	SessionID  int64     `json:"session_id" validate:"required"`
	CategoryID int64     `json:"category_id" validate:"required"`
	Rating     int       `json:"rating" validate:"gte=1,lte=5"`
	Comment    string    `json:"comment,omitempty" validate:"max=500"`
	RatingDate time.Time `json:"rating_date" validate:"required"`
}

type DoctorRating struct {
	lifecycle.Envelope
	RatingDetails
	DoctorID int64 `json:"doctor_id" validate:"required"`
}

func (d *DoctorRating) CopyFrom(src *DoctorRating) {
	d.RatingDetails = src.RatingDetails
	d.DoctorID = src.DoctorID
}

type HospitalRating struct {
	lifecycle.Envelope
	RatingDetails
	HospitalID int64 `json:"hospital_id" validate:"required"`
}

func (h *HospitalRating) CopyFrom(src *HospitalRating) {
	h.RatingDetails = src.RatingDetails
	h.HospitalID = src.HospitalID
}

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

// User is a system user known by name.
type User struct {
	lifecycle.Envelope
	Name string `json:"name" validate:"required,max=100"`
}

func (u *User) CopyFrom(src *User) {
	u.Name = src.Name
}

type UserProfile struct {
	lifecycle.Envelope
	Person
	ProfilePicture string `json:"profile_picture,omitempty" validate:"omitempty,url"`
}

func (u *UserProfile) CopyFrom(src *UserProfile) {
	u.Person = src.Person
	u.ProfilePicture = src.ProfilePicture
}
