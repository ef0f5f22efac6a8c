// Package schema holds the HCL block structures of a catalog document. They
// are decoded with gohcl and translated into the format-agnostic config model
// by the hcl package.
package schema

import "github.com/hashicorp/hcl/v2"

// Course represents a `course` block, either at the top level (compulsory)
// or nested inside a `track` block (elective).
type Course struct {
	Code          string   `hcl:"code,label"`
	Name          string   `hcl:"name"`
	Credits       int      `hcl:"credits"`
	Term          int      `hcl:"term"`
	Delivery      string   `hcl:"delivery,optional"`
	Outcomes      []string `hcl:"outcomes,optional"`
	Prerequisites []string `hcl:"prerequisites,optional"`
}

// Track represents a `track` block grouping the elective courses of one
// specialisation.
type Track struct {
	Name    string    `hcl:"name,label"`
	Courses []*Course `hcl:"course,block"`
}

// Profile represents a graduate `profile` block.
type Profile struct {
	Code        string `hcl:"code,label"`
	Name        string `hcl:"name"`
	Description string `hcl:"description,optional"`
}

// Outcome represents a learning `outcome` block.
type Outcome struct {
	Code        string `hcl:"code,label"`
	Domain      string `hcl:"domain"`
	Description string `hcl:"description,optional"`
}

// Exchange represents an `exchange` block describing an off-campus activity
// that converts into credits.
type Exchange struct {
	Activity    string `hcl:"activity,label"`
	Credits     int    `hcl:"credits"`
	MaxCredits  int    `hcl:"max_credits,optional"`
	Terms       string `hcl:"terms,optional"`
	Description string `hcl:"description,optional"`
	Kind        string `hcl:"kind,optional"`
}

// File is the top-level structure of any catalog file. Every block type may
// appear in any file.
type File struct {
	Courses   []*Course   `hcl:"course,block"`
	Tracks    []*Track    `hcl:"track,block"`
	Profiles  []*Profile  `hcl:"profile,block"`
	Outcomes  []*Outcome  `hcl:"outcome,block"`
	Exchanges []*Exchange `hcl:"exchange,block"`
	Remain    hcl.Body    `hcl:",remain"`
}
