// Package catalog defines the typed social-service definitions a request
// references. The service kind set is closed: every dispatch is an exhaustive
// type switch whose default is a hard UnsupportedServiceType failure, so data
// drift surfaces immediately instead of producing empty field maps.
package catalog

import (
	"time"

	id "aos/pkg/domain"
)

// Kind discriminates the service variants. The wire identifiers keep the
// historical names.
type Kind string

const (
	KindTransport      Kind = "TransportService"
	KindHealthSocial   Kind = "SanteSocialeService"
	KindHousing        Kind = "LogementService"
	KindVacationColony Kind = "ColonieVacanceService"
	KindSchoolSupport  Kind = "AppuiScolaireService"
	KindCulturalSport  Kind = "ActiviteCulturelleSportiveService"
)

// AvailableKinds returns the fixed, ordered kind enumeration. No I/O.
func AvailableKinds() []Kind {
	return []Kind{
		KindTransport,
		KindHealthSocial,
		KindHousing,
		KindVacationColony,
		KindSchoolSupport,
		KindCulturalSport,
	}
}

// Payload is the per-kind typed data of a service entity. The interface is
// sealed: only the variants below implement it.
type Payload interface {
	kind() Kind
}

// TransportPayload describes a commuting route service.
type TransportPayload struct {
	Route       string `json:"trajet"`
	Origin      string `json:"pointDepart"`
	Destination string `json:"pointArrivee"`
	Frequency   string `json:"frequence"`
}

// HealthSocialPayload describes a health/social care reimbursement service.
type HealthSocialPayload struct {
	CareType string  `json:"typeSoin"`
	Amount   float64 `json:"montant"`
}

// HousingPayload describes a housing assistance service.
type HousingPayload struct {
	HousingType        string  `json:"typeLogement"`
	DesiredLocation    string  `json:"localisationSouhaitee"`
	ContributionAmount float64 `json:"montantParticipation"`
}

// VacationColonyPayload describes a children's vacation colony service.
type VacationColonyPayload struct {
	ChildrenCount   int    `json:"nombreEnfants"`
	DesiredLocation string `json:"lieuSouhaite"`
	Period          string `json:"periode"`
}

// SchoolSupportPayload describes a school support grant service.
type SchoolSupportPayload struct {
	Level           string  `json:"niveau"`
	AidType         string  `json:"typeAide"`
	RequestedAmount float64 `json:"montantDemande"`
}

// CulturalSportPayload describes a cultural or sport activity service.
type CulturalSportPayload struct {
	ActivityType string `json:"typeActivite"`
	ActivityName string `json:"nomActivite"`
	ActivityDate string `json:"dateActivite"`
}

func (TransportPayload) kind() Kind      { return KindTransport }
func (HealthSocialPayload) kind() Kind   { return KindHealthSocial }
func (HousingPayload) kind() Kind        { return KindHousing }
func (VacationColonyPayload) kind() Kind { return KindVacationColony }
func (SchoolSupportPayload) kind() Kind  { return KindSchoolSupport }
func (CulturalSportPayload) kind() Kind  { return KindCulturalSport }

// Info is the shared display metadata of a service entity.
type Info struct {
	Icon        string
	Title       string
	Description string
	Features    []string
}

// Entity is one catalog entry. The assignment engine reads it only through
// ExtractFields; it never mutates a service.
type Entity struct {
	ID        id.ServiceID
	Name      string
	Kind      Kind
	Info      Info
	Active    bool
	Payload   Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}
