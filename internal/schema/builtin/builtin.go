// Package builtin ships the schemas for the stock PLX document kinds as
// pure data: course.dy, skills.dy and exo.dy files. They double as
// realistic fixtures for the rest of the pipeline.
package builtin

import "github.com/plx-dev/dycheck/internal/schema"

// Course describes a course.dy file: a single course entity carrying its
// display name, with exactly one code and one goal under it.
var Course = schema.MustNew([]schema.KeyRule{
	{
		Key:              "course",
		Desc:             "Define the course with its name. Only one course per file.",
		Parents:          []string{schema.RootKey},
		Container:        true,
		MinCount:         1,
		MaxCount:         1,
		RequiredChildren: []string{"code", "goal"},
		ValueRequired:    true,
	},
	{
		Key:           "code",
		Desc:          "The short identifier of the course, like PRG1.",
		Parents:       []string{"course"},
		MinCount:      1,
		MaxCount:      1,
		ValueRequired: true,
	},
	{
		Key:           "goal",
		Desc:          "The learning goal of the course.",
		Parents:       []string{"course"},
		MinCount:      1,
		MaxCount:      1,
		ValueRequired: true,
	},
})

// Skills describes a skills.dy file: a flat list of skills, each optionally
// refined by subskills.
var Skills = schema.MustNew([]schema.KeyRule{
	{
		Key:           "skill",
		Desc:          "Define a skill trained by the course.",
		Parents:       []string{schema.RootKey},
		Container:     true,
		MinCount:      1,
		ValueRequired: true,
	},
	{
		Key:           "subskill",
		Desc:          "Refine the parent skill with a more specific one.",
		Parents:       []string{"skill"},
		ValueRequired: true,
	},
})

// Exo describes an exo.dy file: one exercise with its automated checks.
// Each check holds terminal actions and assertions on the exo program.
var Exo = schema.MustNew([]schema.KeyRule{
	{
		Key:              "exo",
		Desc:             "Define a new exercise (exo is shortcut for exercise) with a name.",
		Parents:          []string{schema.RootKey},
		Container:        true,
		MinCount:         1,
		MaxCount:         1,
		RequiredChildren: []string{"check"},
		ValueRequired:    true,
	},
	{
		Key:              "check",
		Desc:             "Describe a check, which is a basic automated test.",
		Parents:          []string{"exo"},
		Container:        true,
		MinCount:         1,
		RequiredChildren: []string{"see"},
		ValueRequired:    true,
	},
	{
		Key:      "args",
		Desc:     "The command line arguments passed to the exo program, split on spaces.",
		Parents:  []string{"check"},
		MaxCount: 1,
	},
	{
		Key:           "see",
		Desc:          "Assert that the standard output of the exo program contains the given text.",
		Parents:       []string{"check"},
		MinCount:      1,
		ValueRequired: true,
	},
	{
		Key:           "type",
		Desc:          "Simulate typing the given text in the terminal and hitting enter.",
		Parents:       []string{"check"},
		ValueRequired: true,
	},
	{
		Key:      "exit",
		Desc:     "Assert the exit code of the exo program. Checked to be 0 when omitted.",
		Parents:  []string{"check"},
		MaxCount: 1,
	},
})

var byName = map[string]*schema.Schema{
	"course": Course,
	"skills": Skills,
	"exo":    Exo,
}

// ByName looks up a built-in schema by its short name: "course", "skills"
// or "exo".
func ByName(name string) (*schema.Schema, bool) {
	s, ok := byName[name]
	return s, ok
}

// Names returns the available built-in schema names.
func Names() []string {
	return []string{"course", "exo", "skills"}
}
