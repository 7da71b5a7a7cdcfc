package services

import (
	"errors"
	"testing"
	"time"

	"github.com/fedsports/registration-system/models"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"datetime-local", "2026-03-10T19:30", time.Date(2026, 3, 10, 19, 30, 0, 0, time.Local), true},
		{"space separator", "2026-03-10 19:30", time.Date(2026, 3, 10, 19, 30, 0, 0, time.Local), true},
		{"with seconds", "2026-03-10T19:30:45", time.Date(2026, 3, 10, 19, 30, 45, 0, time.Local), true},
		{"date only", "2026-03-10", time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), true},
		{"brazilian format rejected", "10/03/2026", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEventTime(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("parseEventTime(%q) err = %v, ok = %v", tt.input, err, tt.ok)
			}
			if tt.ok && !got.Equal(tt.want) {
				t.Errorf("parseEventTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEventType(t *testing.T) {
	if got := normalizeEventType("competicao"); got != models.TypeCompetition {
		t.Errorf("normalizeEventType(competicao) = %q", got)
	}
	for _, v := range []string{"evento", "", "torneio"} {
		if got := normalizeEventType(v); got != models.TypeEvent {
			t.Errorf("normalizeEventType(%q) = %q, want evento", v, got)
		}
	}
}

func TestBuildEvent(t *testing.T) {
	svc := &EventService{now: time.Now}

	t.Run("complete input", func(t *testing.T) {
		fee := 50.0
		event, err := svc.buildEvent(3, CreateEventInput{
			Name:         "Copa Estadual",
			Type:         "competicao",
			StartAt:      "2026-04-01T08:00",
			EndAt:        "2026-04-02T18:00",
			HasFee:       true,
			SuggestedFee: &fee,
		})
		if err != nil {
			t.Fatalf("buildEvent returned error: %v", err)
		}
		if event.AssociationID != 3 {
			t.Errorf("AssociationID = %d", event.AssociationID)
		}
		if event.Type != models.TypeCompetition {
			t.Errorf("Type = %q", event.Type)
		}
		if event.Status != models.EventActive {
			t.Errorf("Status = %q, new events must start active", event.Status)
		}
		if event.StartAt == nil || !event.StartAt.Equal(time.Date(2026, 4, 1, 8, 0, 0, 0, time.Local)) {
			t.Errorf("StartAt = %v", event.StartAt)
		}
		if !event.HasFee || event.SuggestedFee == nil || *event.SuggestedFee != 50 {
			t.Errorf("fee fields = %v / %v", event.HasFee, event.SuggestedFee)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.buildEvent(3, CreateEventInput{EndAt: "2026-04-02"})
		if !errors.Is(err, ErrEventNameRequired) {
			t.Errorf("err = %v, want ErrEventNameRequired", err)
		}
	})

	t.Run("missing end date", func(t *testing.T) {
		_, err := svc.buildEvent(3, CreateEventInput{Name: "Copa"})
		if !errors.Is(err, ErrEventEndDateRequired) {
			t.Errorf("err = %v, want ErrEventEndDateRequired", err)
		}
	})

	t.Run("unparseable end date", func(t *testing.T) {
		_, err := svc.buildEvent(3, CreateEventInput{Name: "Copa", EndAt: "02/04/2026"})
		if !errors.Is(err, ErrEventEndDateRequired) {
			t.Errorf("err = %v, want ErrEventEndDateRequired", err)
		}
	})

	t.Run("unparseable start date is dropped", func(t *testing.T) {
		event, err := svc.buildEvent(3, CreateEventInput{Name: "Copa", StartAt: "amanha", EndAt: "2026-04-02"})
		if err != nil {
			t.Fatalf("buildEvent returned error: %v", err)
		}
		if event.StartAt != nil {
			t.Errorf("StartAt = %v, want nil", event.StartAt)
		}
	})
}
