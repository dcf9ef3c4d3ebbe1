package builtin

import (
	"testing"

	"github.com/plx-dev/dycheck/internal/schema"
)

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		s, ok := ByName(name)
		if !ok || s == nil {
			t.Fatalf("builtin schema %q missing", name)
		}
	}
	if _, ok := ByName("recipe"); ok {
		t.Fatal("unexpected builtin schema")
	}
}

func TestCourseSchemaShape(t *testing.T) {
	t.Parallel()

	rule, ok := Course.RuleFor("course")
	if !ok {
		t.Fatal("course rule missing")
	}
	if !rule.Container || rule.MaxCount != 1 || rule.MinCount != 1 {
		t.Fatalf("unexpected course rule: %+v", rule)
	}
	if !Course.IsValidChild("course", "code") || !Course.IsValidChild("course", "goal") {
		t.Fatal("course must accept code and goal")
	}
	if Course.IsValidChild(schema.RootKey, "code") {
		t.Fatal("code must not be valid at root")
	}
}

func TestExoSchemaShape(t *testing.T) {
	t.Parallel()

	check, ok := Exo.RuleFor("check")
	if !ok || !check.Container {
		t.Fatalf("unexpected check rule: %+v", check)
	}
	for _, key := range []string{"args", "see", "type", "exit"} {
		if !Exo.IsValidChild("check", key) {
			t.Fatalf("check must accept %q", key)
		}
	}
	see, _ := Exo.RuleFor("see")
	if see.MinCount != 1 || !see.ValueRequired {
		t.Fatalf("unexpected see rule: %+v", see)
	}
	args, _ := Exo.RuleFor("args")
	if args.MaxCount != 1 || args.ValueRequired {
		t.Fatalf("unexpected args rule: %+v", args)
	}
}

func TestSkillsSchemaAllowsRepeats(t *testing.T) {
	t.Parallel()

	skill, _ := Skills.RuleFor("skill")
	if skill.MaxCount != 0 {
		t.Fatalf("skills must be repeatable: %+v", skill)
	}
	if !Skills.IsValidChild("skill", "subskill") {
		t.Fatal("subskill must nest under skill")
	}
}
