package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testStructures() Structures {
	return Structures{
		"A":  {"Direzione", "", "", "A"},
		"B":  {"Servizio B", "", "", "A"},
		"C":  {"Servizio C", "", "", "A"},
		"B1": {"Ufficio B1", "", "", "B"},
		"B2": {"Ufficio B2", "", "", "B"},
		"X":  {"Ciclo X", "", "", "Y"},
		"Y":  {"Ciclo Y", "", "", "X"},
	}
}

func TestDescendants(t *testing.T) {
	s := testStructures()

	tests := []struct {
		name string
		uaf  string
		want []string
	}{
		{"root with self parent", "A", []string{"A", "B", "B1", "B2", "C"}},
		{"middle", "B", []string{"B", "B1", "B2"}},
		{"leaf", "C", []string{"C"}},
		{"unknown", "Z", []string{"Z"}},
		{"cycle", "X", []string{"X", "Y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Descendants(tt.uaf))
		})
	}
}

func TestChildrenExcludesSelf(t *testing.T) {
	s := testStructures()
	assert.Equal(t, []string{"B", "C"}, s.Children("A"))
	assert.Empty(t, s.Children("B1"))
	assert.Equal(t, "Servizio B", s.Name("B"))
}

func TestLoadPersonsAndLookups(t *testing.T) {
	path := writeDump(t, `{
		"p1": ["100", "anna@example.org", "x", "Bianchi", "Anna", "x", "B1"],
		"p2": ["200", "bruno@example.org", "x", "Verdi", "Bruno", "x", "C"],
		"p3": ["300", "", "x", "Neri", "Carla", "x", null]
	}`)
	persons, err := LoadPersons(path)
	require.NoError(t, err)
	require.Len(t, persons, 3)

	byMat := persons.ByMatricola()
	assert.Equal(t, "Bruno", byMat["200"].Field(PersonName))

	dept, ok := persons.DepartmentByEmail("anna@example.org")
	assert.True(t, ok)
	assert.Equal(t, "B1", dept)
	_, ok = persons.DepartmentByEmail("nobody@example.org")
	assert.False(t, ok)

	assert.Equal(t, "", byMat["300"].Field(PersonUAF))

	employees := EmployeesOf(persons, testStructures().Descendants("B"))
	require.Len(t, employees, 1)
	assert.Equal(t, "100", employees[0].Field(PersonMatricola))
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadStructures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadStructures(writeDump(t, "[1, 2]"))
	assert.Error(t, err)
}

func TestRecordFieldOutOfRange(t *testing.T) {
	r := Record{"a"}
	assert.Equal(t, "a", r.Field(0))
	assert.Equal(t, "", r.Field(5))
	assert.Equal(t, "", r.Field(-1))
}
