package domain

import (
	"strings"
	"time"
)

type Industry string

const (
	IndustryUnset                Industry = ""
	IndustryConstruction         Industry = "Construction"
	IndustryManufacturing        Industry = "Manufacturing"
	IndustryAgriculture          Industry = "Agriculture"
	IndustryMining               Industry = "Mining"
	IndustryTechnology           Industry = "Technology"
	IndustryRetail               Industry = "Retail"
	IndustryHospitality          Industry = "Hospitality"
	IndustryTransport            Industry = "Transport"
	IndustryHealth               Industry = "Health"
	IndustryFinance              Industry = "Finance"
	IndustryProfessionalServices Industry = "Professional Services"
	IndustryEducation            Industry = "Education"
	IndustryOther                Industry = "Other"
)

var industries = []Industry{
	IndustryConstruction,
	IndustryManufacturing,
	IndustryAgriculture,
	IndustryMining,
	IndustryTechnology,
	IndustryRetail,
	IndustryHospitality,
	IndustryTransport,
	IndustryHealth,
	IndustryFinance,
	IndustryProfessionalServices,
	IndustryEducation,
	IndustryOther,
}

// Industries lists the recognized industries in display order.
func Industries() []Industry {
	out := make([]Industry, len(industries))
	copy(out, industries)
	return out
}

// ParseIndustry maps raw input onto the closed enumeration. Matching is exact
// after trimming; anything else yields IndustryUnset and ok=false.
func ParseIndustry(raw string) (Industry, bool) {
	raw = strings.TrimSpace(raw)
	for _, ind := range industries {
		if string(ind) == raw {
			return ind, true
		}
	}
	return IndustryUnset, false
}

type CompanySize string

const (
	CompanySizeUnset  CompanySize = ""
	CompanySizeMicro  CompanySize = "1-10"
	CompanySizeSmall  CompanySize = "11-50"
	CompanySizeMedium CompanySize = "51-200"
	CompanySizeLarge  CompanySize = "201-500"
	CompanySizeXLarge CompanySize = "500+"
)

var companySizes = []CompanySize{
	CompanySizeMicro,
	CompanySizeSmall,
	CompanySizeMedium,
	CompanySizeLarge,
	CompanySizeXLarge,
}

func CompanySizes() []CompanySize {
	out := make([]CompanySize, len(companySizes))
	copy(out, companySizes)
	return out
}

func ParseCompanySize(raw string) (CompanySize, bool) {
	raw = strings.TrimSpace(raw)
	for _, size := range companySizes {
		if string(size) == raw {
			return size, true
		}
	}
	return CompanySizeUnset, false
}

// CompanyProfile describes the business being assessed. Only CompanyName,
// Industry and CompanySize influence the roadmap.
type CompanyProfile struct {
	CompanyID   string      `json:"company_id"`
	CompanyName string      `json:"company_name"`
	Industry    Industry    `json:"industry,omitempty"`
	CompanySize CompanySize `json:"company_size,omitempty"`
	Address     string      `json:"address,omitempty"`
	Website     string      `json:"website,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ReadyForAssessment reports whether the profile carries the minimum data
// required to build a roadmap.
func (p CompanyProfile) ReadyForAssessment() bool {
	return strings.TrimSpace(p.CompanyName) != ""
}
