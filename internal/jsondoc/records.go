package jsondoc

import (
	"strings"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
)

// File names inside a data directory.
const (
	ProfilesFile      = "profil_lulusan.json"
	OutcomesFile      = "cpl.json"
	CoursesFile       = "mata_kuliah_wajib.json"
	TracksFile        = "peminatan.json"
	PrerequisitesFile = "prasyarat.json"
	ExchangesFile     = "mbkm.json"
)

// Keys of the combined document.
const (
	keyProfiles      = "pl_data"
	keyOutcomes      = "cpl_data"
	keyCourses       = "mk_wajib"
	keyTracks        = "peminatan_data"
	keyPrerequisites = "prasyarat_data"
	keyExchanges     = "mbkm_data"
)

// documentFiles maps each data file onto its combined-document key, in the
// order files are written.
var documentFiles = []struct {
	name  string
	key   string
	value func(*Document) any
}{
	{ProfilesFile, keyProfiles, func(d *Document) any { return d.Profiles }},
	{OutcomesFile, keyOutcomes, func(d *Document) any { return d.Outcomes }},
	{CoursesFile, keyCourses, func(d *Document) any { return d.Courses }},
	{TracksFile, keyTracks, func(d *Document) any { return d.Tracks }},
	{PrerequisitesFile, keyPrerequisites, func(d *Document) any { return d.Prerequisites }},
	{ExchangesFile, keyExchanges, func(d *Document) any { return d.Exchanges }},
}

func fileForKey(key string) string {
	for _, f := range documentFiles {
		if f.key == key {
			return f.name
		}
	}
	return key
}

// courseRecord is a row of the compulsory course file. Outcomes and
// prerequisites are comma-separated strings, as edited in a spreadsheet.
type courseRecord struct {
	Code          string `json:"Kode"`
	Name          string `json:"Nama"`
	Credits       int    `json:"SKS"`
	Term          int    `json:"Semester"`
	Delivery      string `json:"Jenis,omitempty"`
	Outcomes      string `json:"CPL,omitempty"`
	Prerequisites string `json:"Prasyarat,omitempty"`
}

// trackRecord is a row of the flat elective-track file: a course record
// tagged with the track it belongs to.
type trackRecord struct {
	Track string `json:"nama_peminatan"`
	courseRecord
}

type profileRecord struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"kode"`
	Name        string `json:"profil"`
	Description string `json:"deskripsi"`
}

type outcomeRecord struct {
	ID          string `json:"id,omitempty"`
	Domain      string `json:"domain"`
	Code        string `json:"kode"`
	Description string `json:"deskripsi"`
}

type exchangeRecord struct {
	Activity    string `json:"Kegiatan"`
	Credits     int    `json:"SKS"`
	MaxCredits  int    `json:"MaxSKS,omitempty"`
	Terms       string `json:"Semester"`
	Description string `json:"Deskripsi"`
	Kind        string `json:"Jenis"`
}

// Document is the combined snapshot of every data file, keyed the same way
// the dashboard keys its in-memory data. Backups and JSON exports use it.
type Document struct {
	Profiles      []profileRecord     `json:"pl_data"`
	Outcomes      []outcomeRecord     `json:"cpl_data"`
	Courses       []courseRecord      `json:"mk_wajib"`
	Tracks        []trackRecord       `json:"peminatan_data"`
	Prerequisites map[string][]string `json:"prasyarat_data"`
	Exchanges     []exchangeRecord    `json:"mbkm_data"`
}

func (r courseRecord) toModel() *config.Course {
	return &config.Course{
		Code:     strings.TrimSpace(r.Code),
		Name:     r.Name,
		Credits:  r.Credits,
		Term:     r.Term,
		Delivery: r.Delivery,
		Outcomes: catalog.SplitCodes(r.Outcomes),
	}
}

func fromModelCourse(c *config.Course, prereqs []string) courseRecord {
	return courseRecord{
		Code:          c.Code,
		Name:          c.Name,
		Credits:       c.Credits,
		Term:          c.Term,
		Delivery:      c.Delivery,
		Outcomes:      strings.Join(c.Outcomes, ","),
		Prerequisites: strings.Join(prereqs, ","),
	}
}

// NewDocument flattens a model into the combined document shape. Courses
// placed in a track go to the track list (once per track); all others are
// compulsory.
func NewDocument(m *config.Model) *Document {
	doc := &Document{
		Profiles:      []profileRecord{},
		Outcomes:      []outcomeRecord{},
		Courses:       []courseRecord{},
		Tracks:        []trackRecord{},
		Prerequisites: map[string][]string{},
		Exchanges:     []exchangeRecord{},
	}
	for code, list := range m.Prerequisites {
		if len(list) > 0 {
			doc.Prerequisites[code] = append([]string{}, list...)
		}
	}

	byCode := make(map[string]*config.Course, len(m.Courses))
	for _, c := range m.Courses {
		byCode[c.Code] = c
	}
	placed := make(map[string]struct{})
	for _, p := range m.Placements {
		c, ok := byCode[p.Course]
		if !ok {
			continue
		}
		placed[p.Course] = struct{}{}
		rec := fromModelCourse(c, m.Prerequisites[c.Code])
		if p.Term != 0 {
			rec.Term = p.Term
		}
		doc.Tracks = append(doc.Tracks, trackRecord{Track: p.Track, courseRecord: rec})
	}
	for _, c := range m.Courses {
		if _, ok := placed[c.Code]; ok {
			continue
		}
		doc.Courses = append(doc.Courses, fromModelCourse(c, m.Prerequisites[c.Code]))
	}

	for _, p := range m.Profiles {
		doc.Profiles = append(doc.Profiles, profileRecord{ID: p.Code, Code: p.Code, Name: p.Name, Description: p.Description})
	}
	for _, o := range m.Outcomes {
		doc.Outcomes = append(doc.Outcomes, outcomeRecord{ID: o.Code, Domain: o.Domain, Code: o.Code, Description: o.Description})
	}
	for _, e := range m.Exchanges {
		doc.Exchanges = append(doc.Exchanges, exchangeRecord{
			Activity:    e.Activity,
			Credits:     e.Credits,
			MaxCredits:  e.MaxCredits,
			Terms:       e.Terms,
			Description: e.Description,
			Kind:        e.Kind,
		})
	}
	return doc
}
