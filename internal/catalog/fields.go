package catalog

import (
	"strconv"

	dErrors "aos/pkg/domain-errors"
)

// ExtractFields flattens a service's typed payload into an ordered key/value
// list for display. The switch is exhaustive over the closed kind set; an
// unrecognized payload is corrupt data and fails hard rather than degrading
// to an empty map.
func ExtractFields(entity *Entity) ([]Field, error) {
	switch p := entity.Payload.(type) {
	case TransportPayload:
		return []Field{
			{"trajet", p.Route},
			{"pointDepart", p.Origin},
			{"pointArrivee", p.Destination},
			{"frequence", p.Frequency},
		}, nil
	case HealthSocialPayload:
		return []Field{
			{"typeSoin", p.CareType},
			{"montant", formatAmount(p.Amount)},
		}, nil
	case HousingPayload:
		return []Field{
			{"typeLogement", p.HousingType},
			{"localisationSouhaitee", p.DesiredLocation},
			{"montantParticipation", formatAmount(p.ContributionAmount)},
		}, nil
	case VacationColonyPayload:
		return []Field{
			{"nombreEnfants", strconv.Itoa(p.ChildrenCount)},
			{"lieuSouhaite", p.DesiredLocation},
			{"periode", p.Period},
		}, nil
	case SchoolSupportPayload:
		return []Field{
			{"niveau", p.Level},
			{"typeAide", p.AidType},
			{"montantDemande", formatAmount(p.RequestedAmount)},
		}, nil
	case CulturalSportPayload:
		return []Field{
			{"typeActivite", p.ActivityType},
			{"nomActivite", p.ActivityName},
			{"dateActivite", p.ActivityDate},
		}, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeUnsupportedService,
			"unsupported service type %q for service %d", entity.Kind, entity.ID)
	}
}

// Field is one display attribute of a service payload.
type Field struct {
	Key   string
	Value string
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
