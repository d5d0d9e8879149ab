package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

func TestTicketQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter ports.TicketFilter
		want   bson.M
	}{
		{name: "empty", filter: ports.TicketFilter{Page: 2, Limit: 10}, want: bson.M{}},
		{name: "owner", filter: ports.TicketFilter{UserID: 5}, want: bson.M{"user_id": int64(5)}},
		{
			name:   "status and priority",
			filter: ports.TicketFilter{Status: domain.StatusInProgress, Priority: domain.PriorityUrgent},
			want:   bson.M{"status": "in_progress", "priority": "urgent"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ticketQuery(tt.filter); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	if got := skip(0, 25); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := skip(3, 25); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestMongoUserToDomain(t *testing.T) {
	u := mongoUser{ID: 9, Email: "a@example.com", Role: "manager", FullName: "Ann"}.toDomain()
	if u.ID != 9 || u.Role != domain.RoleManager || u.FullName != "Ann" {
		t.Fatalf("unexpected user %+v", u)
	}
}
