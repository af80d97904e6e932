package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aos/pkg/domain-errors"
)

func TestAvailableKinds(t *testing.T) {
	kinds := AvailableKinds()
	assert.Equal(t, []Kind{
		KindTransport,
		KindHealthSocial,
		KindHousing,
		KindVacationColony,
		KindSchoolSupport,
		KindCulturalSport,
	}, kinds)
}

func TestExtractFields(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
		want    []Field
	}{
		{
			name: "transport",
			payload: TransportPayload{
				Route:       "Ligne 12",
				Origin:      "Hay Riad",
				Destination: "Agdal",
				Frequency:   "quotidien",
			},
			want: []Field{
				{"trajet", "Ligne 12"},
				{"pointDepart", "Hay Riad"},
				{"pointArrivee", "Agdal"},
				{"frequence", "quotidien"},
			},
		},
		{
			name:    "health social formats the amount without trailing zeros",
			payload: HealthSocialPayload{CareType: "dentaire", Amount: 1250.5},
			want: []Field{
				{"typeSoin", "dentaire"},
				{"montant", "1250.5"},
			},
		},
		{
			name: "housing",
			payload: HousingPayload{
				HousingType:        "F3",
				DesiredLocation:    "Sale",
				ContributionAmount: 2000,
			},
			want: []Field{
				{"typeLogement", "F3"},
				{"localisationSouhaitee", "Sale"},
				{"montantParticipation", "2000"},
			},
		},
		{
			name: "vacation colony renders the children count",
			payload: VacationColonyPayload{
				ChildrenCount:   3,
				DesiredLocation: "Ifrane",
				Period:          "juillet",
			},
			want: []Field{
				{"nombreEnfants", "3"},
				{"lieuSouhaite", "Ifrane"},
				{"periode", "juillet"},
			},
		},
		{
			name: "school support",
			payload: SchoolSupportPayload{
				Level:           "lycee",
				AidType:         "fournitures",
				RequestedAmount: 750,
			},
			want: []Field{
				{"niveau", "lycee"},
				{"typeAide", "fournitures"},
				{"montantDemande", "750"},
			},
		},
		{
			name: "cultural sport",
			payload: CulturalSportPayload{
				ActivityType: "sport",
				ActivityName: "natation",
				ActivityDate: "2026-09-15",
			},
			want: []Field{
				{"typeActivite", "sport"},
				{"nomActivite", "natation"},
				{"dateActivite", "2026-09-15"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := ExtractFields(&Entity{ID: 1, Kind: tc.payload.kind(), Payload: tc.payload})
			require.NoError(t, err)
			assert.Equal(t, tc.want, fields)
		})
	}

	t.Run("missing payload fails hard", func(t *testing.T) {
		_, err := ExtractFields(&Entity{ID: 9, Kind: KindTransport})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedService))
	})
}

func TestPayloadCodecRoundTrip(t *testing.T) {
	payloads := []Payload{
		TransportPayload{Route: "Ligne 4", Origin: "Centre", Destination: "Ocean", Frequency: "hebdomadaire"},
		HealthSocialPayload{CareType: "optique", Amount: 300.75},
		HousingPayload{HousingType: "F2", DesiredLocation: "Temara", ContributionAmount: 1500},
		VacationColonyPayload{ChildrenCount: 2, DesiredLocation: "Agadir", Period: "aout"},
		SchoolSupportPayload{Level: "college", AidType: "soutien", RequestedAmount: 400},
		CulturalSportPayload{ActivityType: "culture", ActivityName: "theatre", ActivityDate: "2026-10-01"},
	}

	for _, payload := range payloads {
		t.Run(string(payload.kind()), func(t *testing.T) {
			raw, err := encodePayload(payload)
			require.NoError(t, err)

			got, err := decodePayload(payload.kind(), raw)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}

	t.Run("unknown kind fails", func(t *testing.T) {
		_, err := decodePayload(Kind("PrimeService"), []byte(`{}`))
		require.Error(t, err)
	})
}

func TestParsePayload(t *testing.T) {
	t.Run("builds a typed payload from wire JSON", func(t *testing.T) {
		p, err := ParsePayload(KindTransport, []byte(`{"trajet":"L1","pointDepart":"A","pointArrivee":"B","frequence":"quotidien"}`))
		require.NoError(t, err)
		assert.Equal(t, TransportPayload{Route: "L1", Origin: "A", Destination: "B", Frequency: "quotidien"}, p)
	})

	t.Run("empty payload is a bad request", func(t *testing.T) {
		_, err := ParsePayload(KindTransport, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("unknown kind is unsupported", func(t *testing.T) {
		_, err := ParsePayload(Kind("PrimeService"), []byte(`{}`))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedService))
	})
}

func newCatalogService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewInMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create fixes the kind from the payload", func(t *testing.T) {
		svc := newCatalogService(t)

		entity, err := svc.CreateService(ctx, CreateInput{
			Name:    "Transport urbain",
			Info:    Info{Title: "Transport", Features: []string{"abonnement"}},
			Payload: TransportPayload{Route: "L1"},
			Active:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, KindTransport, entity.Kind)
		assert.NotZero(t, entity.ID)
	})

	t.Run("duplicate name is a conflict regardless of case", func(t *testing.T) {
		svc := newCatalogService(t)

		_, err := svc.CreateService(ctx, CreateInput{Name: "Colonie", Payload: VacationColonyPayload{}})
		require.NoError(t, err)

		_, err = svc.CreateService(ctx, CreateInput{Name: "COLONIE", Payload: VacationColonyPayload{}})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("missing payload is unsupported", func(t *testing.T) {
		svc := newCatalogService(t)

		_, err := svc.CreateService(ctx, CreateInput{Name: "Sans type"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedService))
	})

	t.Run("update keeps the payload immutable", func(t *testing.T) {
		svc := newCatalogService(t)

		entity, err := svc.CreateService(ctx, CreateInput{
			Name:    "Appui scolaire",
			Payload: SchoolSupportPayload{Level: "primaire"},
		})
		require.NoError(t, err)

		name := "Appui scolaire 2026"
		title := "Appui"
		updated, err := svc.UpdateService(ctx, entity.ID, UpdateInput{Name: &name, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Appui scolaire 2026", updated.Name)
		assert.Equal(t, "Appui", updated.Info.Title)
		assert.Equal(t, SchoolSupportPayload{Level: "primaire"}, updated.Payload)
	})

	t.Run("toggling filters the active listing", func(t *testing.T) {
		svc := newCatalogService(t)

		entity, err := svc.CreateService(ctx, CreateInput{
			Name:    "Sante",
			Payload: HealthSocialPayload{CareType: "generale"},
			Active:  true,
		})
		require.NoError(t, err)

		active, err := svc.ListActiveServices(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)

		_, err = svc.SetActive(ctx, entity.ID, false)
		require.NoError(t, err)

		active, err = svc.ListActiveServices(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := svc.ListServices(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("unknown service is NotFound", func(t *testing.T) {
		svc := newCatalogService(t)

		_, err := svc.GetService(ctx, 77)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("fields flow through the typed payload", func(t *testing.T) {
		svc := newCatalogService(t)

		entity, err := svc.CreateService(ctx, CreateInput{
			Name:    "Logement social",
			Payload: HousingPayload{HousingType: "F4", DesiredLocation: "Rabat", ContributionAmount: 3000},
		})
		require.NoError(t, err)

		fields, err := svc.GetServiceFields(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, []Field{
			{"typeLogement", "F4"},
			{"localisationSouhaitee", "Rabat"},
			{"montantParticipation", "3000"},
		}, fields)
	})
}
