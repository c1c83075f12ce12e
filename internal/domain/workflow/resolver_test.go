package workflow

import (
	"context"
	"errors"
	"testing"
)

type fakeDirectory map[uint64][]uint64

func (f fakeDirectory) RoleHolders(_ context.Context, roleID uint64) ([]uint64, error) {
	if roleID == 999 {
		return nil, errors.New("directory down")
	}
	return f[roleID], nil
}

func u64(v uint64) *uint64 { return &v }

func TestResolverFor(t *testing.T) {
	tests := []struct {
		name string
		in   RoleAssignment
		want Resolver
	}{
		{"single with specific user", RoleAssignment{RoleID: 7, Logic: LogicSingle, IsSpecificUser: true, UserID: u64(42)}, Resolver{Kind: SpecificUser, RoleID: 7, UserID: 42}},
		{"single flag off ignores user", RoleAssignment{RoleID: 7, Logic: LogicSingle, IsSpecificUser: false, UserID: u64(42)}, Resolver{Kind: AnyRoleHolder, RoleID: 7}},
		{"single flag on without user", RoleAssignment{RoleID: 7, Logic: LogicSingle, IsSpecificUser: true}, Resolver{Kind: AnyRoleHolder, RoleID: 7}},
		{"or", RoleAssignment{RoleID: 7, Logic: LogicOr}, Resolver{Kind: AnyRoleHolder, RoleID: 7}},
		{"and", RoleAssignment{RoleID: 7, Logic: LogicAnd}, Resolver{Kind: AllRoleHolders, RoleID: 7}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolverFor(tt.in); got != tt.want {
				t.Fatalf("ResolverFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolver_Roster(t *testing.T) {
	dir := fakeDirectory{7: {3, 5, 9}}
	ctx := context.Background()

	got, err := Resolver{Kind: SpecificUser, RoleID: 7, UserID: 42}.Roster(ctx, dir)
	if err != nil || len(got) != 1 || got[0] != 42 {
		t.Fatalf("specific roster = %v, %v", got, err)
	}

	for _, k := range []ResolverKind{AnyRoleHolder, AllRoleHolders} {
		got, err := Resolver{Kind: k, RoleID: 7}.Roster(ctx, dir)
		if err != nil || len(got) != 3 {
			t.Fatalf("%s roster = %v, %v", k, got, err)
		}
	}

	if _, err := (Resolver{Kind: AnyRoleHolder, RoleID: 999}).Roster(ctx, dir); err == nil {
		t.Fatalf("expected directory error")
	}
}

// "and" steps currently resolve on a single approval from the first holder;
// unanimous fan-out is not modelled.
func TestResolver_AssigneeTreatsAndLikeOr(t *testing.T) {
	r := Resolver{Kind: AllRoleHolders, RoleID: 7}
	got, err := r.Assignee([]uint64{3, 5, 9})
	if err != nil || got != 3 {
		t.Fatalf("Assignee = %d, %v; want 3", got, err)
	}
	if _, err := r.Assignee(nil); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("want ErrEmptyRoster, got %v", err)
	}
}

func TestDefinition_CoversCategory(t *testing.T) {
	all := Definition{}
	if !all.CoversCategory(12) {
		t.Fatalf("empty category set must cover everything")
	}
	d := Definition{CategoryIDs: []uint64{1, 4}}
	if !d.CoversCategory(4) || d.CoversCategory(2) {
		t.Fatalf("CoversCategory mismatch for %v", d.CategoryIDs)
	}
}
