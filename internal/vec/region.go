package vec

// Region3 — ограничивающий прямоугольный параллелепипед [Min, Max) в
// мировых координатах. Используется для bounding box структур и для
// проверки пересечения с террейном. Грунтовано на Region из
// _examples/original_source/server/ (world/ops.rs использует Region::new,
// .overlaps, .points(), .intersect(), .reduce().div_round_signed(...)).
type Region3 struct {
	Min, Max Vec3
}

// NewRegion3 строит регион [min, min+size).
func NewRegion3(min, size Vec3) Region3 {
	return Region3{Min: min, Max: min.Add(size)}
}

// Overlaps проверяет пересечение двух регионов (полуинтервалы [Min,Max)).
func (r Region3) Overlaps(o Region3) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y &&
		r.Min.Z < o.Max.Z && o.Min.Z < r.Max.Z
}

// Contains проверяет, лежит ли точка внутри региона.
func (r Region3) Contains(p Vec3) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y &&
		p.Z >= r.Min.Z && p.Z < r.Max.Z
}

// ChunkBounds возвращает диапазон координат чанков (в плоскости XY), которые
// пересекает bounding box — используется для structures_by_chunk и для
// инвалидации террейна.
func (r Region3) ChunkBounds() Region2 {
	min := r.Min.ToVec2().DivFloor(ChunkSize)
	// Max исключается (полуинтервал), поэтому последняя точка — Max-1.
	maxInclusive := Vec2{X: r.Max.X - 1, Y: r.Max.Y - 1}.DivFloor(ChunkSize)
	return Region2{Min: min, Max: maxInclusive.Add(Vec2{1, 1})}
}

// Region2 — прямоугольник [Min, Max) в координатах чанков или блоков в плоскости XY.
type Region2 struct {
	Min, Max Vec2
}

// NewRegion2 строит регион [min, min+size).
func NewRegion2(min, size Vec2) Region2 {
	return Region2{Min: min, Max: min.Add(size)}
}

// Points перечисляет все целые точки региона в порядке возрастания Y затем X.
func (r Region2) Points() []Vec2 {
	pts := make([]Vec2, 0, (r.Max.X-r.Min.X)*(r.Max.Y-r.Min.Y))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pts = append(pts, Vec2{X: x, Y: y})
		}
	}
	return pts
}

// Contains проверяет принадлежность точки региону.
func (r Region2) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Intersect возвращает пересечение двух регионов (может быть пустым: Min >= Max).
func (r Region2) Intersect(o Region2) Region2 {
	min := Vec2{X: maxInt(r.Min.X, o.Min.X), Y: maxInt(r.Min.Y, o.Min.Y)}
	max := Vec2{X: minInt(r.Max.X, o.Max.X), Y: minInt(r.Max.Y, o.Max.Y)}
	return Region2{Min: min, Max: max}
}

// Empty возвращает true, если регион не содержит ни одной точки.
func (r Region2) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
