package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/latticeworld/worldcore/internal/vec"
	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeTemp: %v", err)
	}
	return path
}

func TestBlockTableLookup(t *testing.T) {
	path := writeTemp(t, "blocks.json", `[{"id":0,"name":"empty"},{"id":1,"name":"grass/z0"}]`)

	table, err := LoadBlockTable(path)
	assert.NoError(t, err, "таблица блоков должна загружаться без ошибок")

	assert.Equal(t, BlockID(1), table.GetID("grass/z0"), "известное имя должно резолвиться в свой id")
	assert.Equal(t, MissingBlockID, table.GetID("no/such/block"), "неизвестное имя должно давать MissingBlockID")

	name, ok := table.Name(BlockID(0))
	assert.True(t, ok, "обратный поиск по id должен находить имя")
	assert.Equal(t, "empty", name)
}

func TestBlockTableDuplicateID(t *testing.T) {
	path := writeTemp(t, "blocks.json", `[{"id":1,"name":"a"},{"id":1,"name":"b"}]`)

	_, err := LoadBlockTable(path)
	assert.Error(t, err, "дублирующийся id блока должен быть ошибкой загрузки")
}

func TestTemplateTableShapeAt(t *testing.T) {
	path := writeTemp(t, "templates.json", `[{"id":1,"name":"tree","size":[1,1,2],"shape":[5,6],"layer":1}]`)

	table, err := LoadTemplateTable(path)
	assert.NoError(t, err, "таблица шаблонов должна загружаться без ошибок")

	id, ok := table.GetID("tree")
	assert.True(t, ok, "шаблон tree должен быть найден по имени")

	def, ok := table.Def(id)
	assert.True(t, ok, "определение шаблона должно быть доступно по id")

	assert.Equal(t, BlockID(5), def.ShapeAt(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.Equal(t, BlockID(6), def.ShapeAt(vec.Vec3{X: 0, Y: 0, Z: 1}))
	assert.Equal(t, MissingBlockID, def.ShapeAt(vec.Vec3{X: 0, Y: 0, Z: 2}), "выход за границы шаблона должен давать MissingBlockID")
}

func TestTemplateTableSizeMismatch(t *testing.T) {
	path := writeTemp(t, "templates.json", `[{"id":1,"name":"bad","size":[1,1,2],"shape":[5]}]`)

	_, err := LoadTemplateTable(path)
	assert.Error(t, err, "несовпадение длины shape с size должно быть ошибкой загрузки")
}

func TestItemTableLookup(t *testing.T) {
	path := writeTemp(t, "items.json", `[{"id":10,"name":"axe"}]`)

	table, err := LoadItemTable(path)
	assert.NoError(t, err, "таблица предметов должна загружаться без ошибок")

	id, ok := table.GetID("axe")
	assert.True(t, ok)
	assert.Equal(t, ItemID(10), id)

	_, ok = table.GetID("no such item")
	assert.False(t, ok, "неизвестное имя предмета не должно резолвиться")
}
