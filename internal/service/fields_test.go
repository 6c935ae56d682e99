package service

import "testing"

func TestAuthorizeUpdate(t *testing.T) {
	cases := []struct {
		name   string
		kind   resourceKind
		fields []string
		want   bool
	}{
		{"user all allowed", resourceUser, []string{"name", "email", "password", "age"}, true},
		{"user empty set", resourceUser, nil, true},
		{"user unknown field", resourceUser, []string{"name", "location"}, false},
		{"user id is immutable", resourceUser, []string{"id"}, false},
		{"user tokens are immutable", resourceUser, []string{"tokens"}, false},
		{"task all allowed", resourceTask, []string{"description", "completed"}, true},
		{"task owner is immutable", resourceTask, []string{"description", "owner"}, false},
		{"unknown kind rejects everything", resourceKind("note"), []string{"description"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := authorizeUpdate(tc.kind, tc.fields); got != tc.want {
				t.Fatalf("authorizeUpdate(%q, %v) = %v, want %v", tc.kind, tc.fields, got, tc.want)
			}
		})
	}
}
