package catalog

import "channelling/internal/lifecycle"

// Descriptors for every catalog kind. Code-bearing kinds embed
// lifecycle.Definition and are keyed by code automatically.

var (
	CountryDescriptor = lifecycle.Descriptor[*Country]{
		Name:       "country",
		New:        func() *Country { return &Country{} },
		CopyFields: (*Country).CopyFrom,
	}
	StateDescriptor = lifecycle.Descriptor[*State]{
		Name:       "state",
		New:        func() *State { return &State{} },
		CopyFields: (*State).CopyFrom,
		References: []string{"country_id"},
	}
	CityDescriptor = lifecycle.Descriptor[*City]{
		Name:       "city",
		New:        func() *City { return &City{} },
		CopyFields: (*City).CopyFrom,
		References: []string{"state_id"},
	}
	InstitutionDescriptor = lifecycle.Descriptor[*Institution]{
		Name:       "institution",
		New:        func() *Institution { return &Institution{} },
		CopyFields: (*Institution).CopyFrom,
		References: []string{"country_id"},
	}
	SpecializationDescriptor = lifecycle.Descriptor[*Specialization]{
		Name:       "specialization",
		New:        func() *Specialization { return &Specialization{} },
		CopyFields: (*Specialization).CopyFrom,
	}
	QualificationLevelDescriptor = lifecycle.Descriptor[*QualificationLevel]{
		Name:       "qualification_level",
		New:        func() *QualificationLevel { return &QualificationLevel{} },
		CopyFields: (*QualificationLevel).CopyFrom,
	}
	QualificationDescriptor = lifecycle.Descriptor[*Qualification]{
		Name:       "qualification",
		New:        func() *Qualification { return &Qualification{} },
		CopyFields: (*Qualification).CopyFrom,
		References: []string{"qualification_level_id"},
	}
	TransactionTypeDescriptor = lifecycle.Descriptor[*TransactionType]{
		Name:       "transaction_type",
		New:        func() *TransactionType { return &TransactionType{} },
		CopyFields: (*TransactionType).CopyFrom,
	}
	ContactMethodDescriptor = lifecycle.Descriptor[*ContactMethod]{
		Name:       "contact_method",
		New:        func() *ContactMethod { return &ContactMethod{} },
		CopyFields: (*ContactMethod).CopyFrom,
	}
	TitleDescriptor = lifecycle.Descriptor[*Title]{
		Name:       "title",
		New:        func() *Title { return &Title{} },
		CopyFields: (*Title).CopyFrom,
	}
	HospitalDescriptor = lifecycle.Descriptor[*Hospital]{
		Name:       "hospital",
		New:        func() *Hospital { return &Hospital{} },
		CopyFields: (*Hospital).CopyFrom,
		References: []string{"city_id"},
	}
	DoctorDescriptor = lifecycle.Descriptor[*Doctor]{
		Name:       "doctor",
		New:        func() *Doctor { return &Doctor{} },
		CopyFields: (*Doctor).CopyFrom,
		References: []string{"city_id", "title_id"},
	}
	DoctorSpecialityDescriptor = lifecycle.Descriptor[*DoctorSpeciality]{
		Name:       "doctor_speciality",
		New:        func() *DoctorSpeciality { return &DoctorSpeciality{} },
		CopyFields: (*DoctorSpeciality).CopyFrom,
		References: []string{"doctor_id", "speciality_id"},
	}
	DoctorQualificationDescriptor = lifecycle.Descriptor[*DoctorQualification]{
		Name:       "doctor_qualification",
		New:        func() *DoctorQualification { return &DoctorQualification{} },
		CopyFields: (*DoctorQualification).CopyFrom,
		References: []string{"doctor_id", "institution_id", "qualification_level_id"},
	}
	DoctorSessionDescriptor = lifecycle.Descriptor[*DoctorSession]{
		Name:       "doctor_session",
		New:        func() *DoctorSession { return &DoctorSession{} },
		CopyFields: (*DoctorSession).CopyFrom,
		References: []string{"doctor_id", "hospital_id"},
	}
	PatientDescriptor = lifecycle.Descriptor[*Patient]{
		Name:       "patient",
		New:        func() *Patient { return &Patient{} },
		CopyFields: (*Patient).CopyFrom,
		References: []string{"city_id"},
	}
	AppointmentDescriptor = lifecycle.Descriptor[*Appointment]{
		Name:       "appointment",
		New:        func() *Appointment { return &Appointment{} },
		CopyFields: (*Appointment).CopyFrom,
		References: []string{"patient_id", "session_id"},
	}
	FeesDescriptor = lifecycle.Descriptor[*Fees]{
		Name:       "fees",
		New:        func() *Fees { return &Fees{} },
		CopyFields: (*Fees).CopyFrom,
		References: []string{"session_id", "transaction_type_id"},
	}
	DoctorFeesDescriptor = lifecycle.Descriptor[*DoctorFees]{
		Name:       "doctor_fees",
		New:        func() *DoctorFees { return &DoctorFees{} },
		CopyFields: (*DoctorFees).CopyFrom,
		References: []string{"doctor_id", "transaction_id"},
	}
	HospitalFeesDescriptor = lifecycle.Descriptor[*HospitalFees]{
		Name:       "hospital_fees",
		New:        func() *HospitalFees { return &HospitalFees{} },
		CopyFields: (*HospitalFees).CopyFrom,
		References: []string{"hospital_id", "transaction_id"},
	}
	PaymentDescriptor = lifecycle.Descriptor[*Payment]{
		Name:       "payment",
		New:        func() *Payment { return &Payment{} },
		CopyFields: (*Payment).CopyFrom,
		References: []string{"appointment_id"},
	}
	RatingCategoryDescriptor = lifecycle.Descriptor[*RatingCategory]{
		Name:       "rating_category",
		New:        func() *RatingCategory { return &RatingCategory{} },
		CopyFields: (*RatingCategory).CopyFrom,
	}
	DoctorRatingDescriptor = lifecycle.Descriptor[*DoctorRating]{
		Name:       "doctor_rating",
		New:        func() *DoctorRating { return &DoctorRating{} },
		CopyFields: (*DoctorRating).CopyFrom,
		References: []string{"doctor_id", "patient_id", "session_id", "category_id"},
	}
	HospitalRatingDescriptor = lifecycle.Descriptor[*HospitalRating]{
		Name:       "hospital_rating",
		New:        func() *HospitalRating { return &HospitalRating{} },
		CopyFields: (*HospitalRating).CopyFrom,
		References: []string{"hospital_id", "patient_id", "session_id", "category_id"},
	}
	UserDescriptor = lifecycle.Descriptor[*User]{
		Name:       "user",
		New:        func() *User { return &User{} },
		CopyFields: (*User).CopyFrom,
	}
	UserProfileDescriptor = lifecycle.Descriptor[*UserProfile]{
		Name:       "user_profile",
		New:        func() *UserProfile { return &UserProfile{} },
		CopyFields: (*UserProfile).CopyFrom,
	}
)
