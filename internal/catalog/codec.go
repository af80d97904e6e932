package catalog

import (
	"encoding/json"
	"fmt"

	dErrors "aos/pkg/domain-errors"
)

// ParsePayload builds a typed payload from caller-supplied JSON. Unknown
// kinds are rejected with UnsupportedServiceType.
func ParsePayload(kind Kind, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "service payload is required")
	}
	p, err := decodePayload(kind, raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnsupportedService, "invalid service payload")
	}
	return p, nil
}

// encodePayload serializes a payload for storage. The discriminator column is
// the entity's kind; the payload carries only the variant fields.
func encodePayload(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.kind(), err)
	}
	return raw, nil
}

// decodePayload rebuilds the typed payload from its stored form. An unknown
// kind is a hard failure.
func decodePayload(kind Kind, raw []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch kind {
	case KindTransport:
		var v TransportPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindHealthSocial:
		var v HealthSocialPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindHousing:
		var v HousingPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindVacationColony:
		var v VacationColonyPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindSchoolSupport:
		var v SchoolSupportPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindCulturalSport:
		var v CulturalSportPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown service kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}
