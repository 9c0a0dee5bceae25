package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestActivationLink_Status(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		link ActivationLink
		want LinkStatus
	}{
		{
			name: "valid",
			link: ActivationLink{Active: true, ExpiresAt: now.Add(time.Hour)},
			want: LinkValid,
		},
		{
			name: "used",
			link: ActivationLink{Active: false, UsedAt: timePtr(now.Add(-time.Hour)), ExpiresAt: now.Add(time.Hour)},
			want: LinkUsed,
		},
		{
			name: "expired",
			link: ActivationLink{Active: true, ExpiresAt: now.Add(-time.Minute)},
			want: LinkExpired,
		},
		{
			name: "expired exactly now",
			link: ActivationLink{Active: true, ExpiresAt: now},
			want: LinkExpired,
		},
		{
			name: "inactive",
			link: ActivationLink{Active: false, ExpiresAt: now.Add(time.Hour)},
			want: LinkInactive,
		},
		{
			name: "used wins over expired",
			link: ActivationLink{Active: false, UsedAt: timePtr(now.Add(-2 * time.Hour)), ExpiresAt: now.Add(-time.Hour)},
			want: LinkUsed,
		},
		{
			name: "expired wins over inactive",
			link: ActivationLink{Active: false, ExpiresAt: now.Add(-time.Hour)},
			want: LinkExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.Status(now); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
			wantValid := tt.want == LinkValid
			if got := tt.link.IsValid(now); got != wantValid {
				t.Errorf("IsValid() = %v, want %v", got, wantValid)
			}
		})
	}
}

func TestActivationLink_45DayWindow(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	link := ActivationLink{
		ID:        uuid.New(),
		Token:     uuid.NewString(),
		Active:    true,
		CreatedAt: created,
		ExpiresAt: created.Add(45 * 24 * time.Hour),
	}

	if got := link.Status(created.Add(44 * 24 * time.Hour)); got != LinkValid {
		t.Errorf("Status at day 44 = %q, want %q", got, LinkValid)
	}
	if got := link.Status(created.Add(46 * 24 * time.Hour)); got != LinkExpired {
		t.Errorf("Status at day 46 = %q, want %q", got, LinkExpired)
	}
}
