package registry

import "testing"

func seeded(t *testing.T) *Registry {
	t.Helper()
	r := New()
	ids := []Identity{
		{TagID: "RF001", Name: "Alice Johnson", Role: RoleStudent, Email: "alice@school.edu", Active: true},
		{TagID: "RF002", Name: "Bob Smith", Role: RoleTeacher, Email: "bob@school.edu", Active: true},
		{TagID: "RF003", Name: "Carol Davis", Role: RoleStudent, Email: "carol@school.edu", Active: false},
		{TagID: "RF004", Name: "David Wilson", Role: RoleStaff, Email: "david@school.edu", Active: true},
	}
	for _, id := range ids {
		if err := r.Add(id); err != nil {
			t.Fatalf("Add(%s): %v", id.TagID, err)
		}
	}
	return r
}

func TestAddRejectsDuplicateTag(t *testing.T) {
	r := seeded(t)
	err := r.Add(Identity{TagID: "RF001", Name: "Impostor", Role: RoleStudent})
	if err != ErrTagExists {
		t.Fatalf("duplicate Add err = %v, want %v", err, ErrTagExists)
	}
	if id, _ := r.Get("RF001"); id.Name != "Alice Johnson" {
		t.Error("duplicate Add overwrote the existing identity")
	}
}

func TestAddValidates(t *testing.T) {
	r := New()
	tests := []struct {
		name string
		id   Identity
	}{
		{"missing_tag", Identity{Name: "X", Role: RoleStudent}},
		{"missing_name", Identity{TagID: "RF010", Role: RoleStudent}},
		{"bad_role", Identity{TagID: "RF010", Name: "X", Role: "Janitor"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := r.Add(test.id); err != ErrInvalid {
				t.Errorf("err = %v, want %v", err, ErrInvalid)
			}
		})
	}
}

func TestUpdateAndRemove(t *testing.T) {
	r := seeded(t)

	updated := Identity{TagID: "RF003", Name: "Carol Davis", Role: RoleStudent, Email: "carol@school.edu", Active: true}
	if err := r.Update(updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if id, _ := r.Get("RF003"); !id.Active {
		t.Error("Update did not apply")
	}

	if err := r.Update(Identity{TagID: "RF404", Name: "Ghost", Role: RoleStaff}); err != ErrTagNotFound {
		t.Errorf("Update missing err = %v, want %v", err, ErrTagNotFound)
	}

	if err := r.Remove("RF002"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := r.Get("RF002"); ok {
		t.Error("Remove left the identity behind")
	}
	if err := r.Remove("RF002"); err != ErrTagNotFound {
		t.Errorf("second Remove err = %v, want %v", err, ErrTagNotFound)
	}
	if r.Count() != 3 {
		t.Errorf("Count = %d, want 3", r.Count())
	}
}

func TestListFilters(t *testing.T) {
	r := seeded(t)

	tests := []struct {
		name     string
		role     Role
		search   string
		wantTags []string
	}{
		{"all", "", "", []string{"RF001", "RF002", "RF003", "RF004"}},
		{"role_student", RoleStudent, "", []string{"RF001", "RF003"}},
		{"search_name", "", "davis", []string{"RF003"}},
		{"search_tag", "", "rf004", []string{"RF004"}},
		{"search_email", "", "bob@", []string{"RF002"}},
		{"role_and_search", RoleStudent, "alice", []string{"RF001"}},
		{"role_and_search_excludes", RoleTeacher, "alice", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := r.List(test.role, test.search)
			if len(got) != len(test.wantTags) {
				t.Fatalf("got %d identities, want %d", len(got), len(test.wantTags))
			}
			for i, id := range got {
				if id.TagID != test.wantTags[i] {
					t.Errorf("List[%d] = %s, want %s (registration order)", i, id.TagID, test.wantTags[i])
				}
			}
		})
	}
}
