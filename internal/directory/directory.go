// Package directory reads the personnel and organisational-unit (UAF) JSON
// dumps exported by the HR system.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Positional fields of a person record.
const (
	PersonMatricola = 0
	PersonEmail     = 1
	PersonSurname   = 3
	PersonName      = 4
	PersonUAF       = 6
)

// Positional fields of a structure record.
const (
	StructureName   = 0
	StructureParent = 3
)

// UnknownDepartment is reported for emails missing from the person dump.
const UnknownDepartment = "(non trovato)"

// Record is one positional row of a dump.
type Record []string

// Field returns the i-th value or "" when the record is too short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Persons is the person dump keyed as in the source file.
type Persons map[string]Record

// Structures is the structure dump keyed by UAF.
type Structures map[string]Record

func readDump(path string) (map[string]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump %s: %w", path, err)
	}
	m, err := decodeDump(data)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", path, err)
	}
	return m, nil
}

func decodeDump(data []byte) (map[string]Record, error) {
	var raw map[string][]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	out := make(map[string]Record, len(raw))
	for k, values := range raw {
		rec := make(Record, len(values))
		for i, v := range values {
			switch tv := v.(type) {
			case nil:
			case string:
				rec[i] = tv
			default:
				rec[i] = fmt.Sprint(tv)
			}
		}
		out[k] = rec
	}
	return out, nil
}

func LoadPersons(path string) (Persons, error) {
	m, err := readDump(path)
	return Persons(m), err
}

// ParsePersons decodes a person dump already read into memory.
func ParsePersons(data []byte) (Persons, error) {
	m, err := decodeDump(data)
	return Persons(m), err
}

func LoadStructures(path string) (Structures, error) {
	m, err := readDump(path)
	return Structures(m), err
}

// Keys returns the dump keys sorted, for deterministic iteration.
func (p Persons) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ByMatricola re-keys the dump by matricola. Later duplicates win.
func (p Persons) ByMatricola() map[string]Record {
	out := make(map[string]Record, len(p))
	for _, k := range p.Keys() {
		rec := p[k]
		out[rec.Field(PersonMatricola)] = rec
	}
	return out
}

// DepartmentByEmail returns the UAF of the first person with email, in key
// order, and whether one was found.
func (p Persons) DepartmentByEmail(email string) (string, bool) {
	for _, k := range p.Keys() {
		rec := p[k]
		if rec.Field(PersonEmail) == email {
			return rec.Field(PersonUAF), true
		}
	}
	return "", false
}

// EmailIndex maps every email to its UAF; the first key in order wins.
func (p Persons) EmailIndex() map[string]string {
	out := make(map[string]string, len(p))
	for _, k := range p.Keys() {
		rec := p[k]
		email := rec.Field(PersonEmail)
		if _, ok := out[email]; !ok {
			out[email] = rec.Field(PersonUAF)
		}
	}
	return out
}

// Name returns the structure name of uaf.
func (s Structures) Name(uaf string) string {
	return s[uaf].Field(StructureName)
}

// Children lists the direct children of uaf in sorted order. A structure
// that names itself as parent is not its own child.
func (s Structures) Children(uaf string) []string {
	var out []string
	for k, rec := range s {
		if k != uaf && rec.Field(StructureParent) == uaf {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Descendants returns uaf followed by every structure below it, depth-first
// and without repetitions. Cycles in the parent links are tolerated.
func (s Structures) Descendants(uaf string) []string {
	children := make(map[string][]string, len(s))
	for k, rec := range s {
		parent := rec.Field(StructureParent)
		if parent != k {
			children[parent] = append(children[parent], k)
		}
	}
	for k := range children {
		sort.Strings(children[k])
	}

	seen := map[string]bool{}
	var out []string
	var walk func(string)
	walk = func(u string) {
		if seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
		for _, c := range children[u] {
			walk(c)
		}
	}
	walk(uaf)
	return out
}

// EmployeesOf returns the persons assigned to any of uafs, sorted by
// matricola.
func EmployeesOf(persons Persons, uafs []string) []Record {
	set := make(map[string]struct{}, len(uafs))
	for _, u := range uafs {
		set[u] = struct{}{}
	}
	var out []Record
	for _, k := range persons.Keys() {
		rec := persons[k]
		if _, ok := set[rec.Field(PersonUAF)]; ok {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field(PersonMatricola) < out[j].Field(PersonMatricola)
	})
	return out
}
