package extractor

import "testing"

func obj(keys ...string) Object {
	o := Object{}
	for _, k := range keys {
		o = append(o, Member{Key: k, Value: String("x")})
	}
	return o
}

func TestLooksLikeRow(t *testing.T) {
	tests := []struct {
		name string
		row  Object
		want bool
	}{
		{name: "name and money", row: obj("athleteName", "totalEarnings"), want: true},
		{name: "name only", row: obj("contestantName", "rank"), want: false},
		{name: "money only", row: obj("eventId", "amount"), want: false},
		{name: "upper case keys", row: obj("ATHLETE", "WORLDSTANDING"), want: true},
		{name: "mixed case keys", row: obj("HeelerName", "MoneyWon"), want: true},
		{name: "lady and world", row: obj("lady", "worldTotal"), want: true},
		{name: "metadata only", row: obj("id", "slug", "eventType"), want: false},
		{name: "empty", row: Object{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeRow(tt.row); got != tt.want {
				t.Errorf("LooksLikeRow(%v) = %v, want %v", tt.row.Keys(), got, tt.want)
			}
		})
	}
}
