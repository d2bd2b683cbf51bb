package boiledrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertQuery(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		n    int
		want string
	}{
		{"single row", []string{"id", "name"}, 1, `INSERT INTO "classes" ("id","name") VALUES ($1,$2)`},
		{"many rows", []string{"id", "name"}, 3, `INSERT INTO "classes" ("id","name") VALUES ($1,$2),($3,$4),($5,$6)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insertQuery("classes", tt.cols, tt.n))
		})
	}
}

func TestUpdateAndDeleteQuery(t *testing.T) {
	assert.Equal(t, `UPDATE "classes" SET "name"=$1,"grade_level"=$2 WHERE "id"=$3`, updateQuery("classes", []string{"name", "grade_level"}))
	assert.Equal(t, `DELETE FROM "classes" WHERE "id"=$1`, deleteQuery("classes"))
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, `%kaya%`, searchPattern("kaya"))
	assert.Equal(t, `%100\%\_a%`, searchPattern("100%_a"))
}
