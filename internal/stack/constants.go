package stack

// Геометрия башни и параметры движения блока.
const (
	BlockHeight   = 0.05 // Высота каждого блока
	BaseFootprint = 0.4  // Ширина и глубина основания

	BounceBound = 0.6   // Граница, на которой блок меняет направление
	StepSpeed   = 0.011 // Смещение за один кадр

	// Допуск идеального совпадения и прирост бонуса держим раздельно,
	// хотя значения сейчас одинаковые.
	PerfectTolerance = 0.005
	BonusGrowth      = 0.005
	BonusStreak      = 7   // Сколько идеальных совпадений подряд нужно для роста
	BonusSizeLimit   = 1.0 // Блок не растёт, если уже достиг этого размера

	CompactionHeight = 10 // С этой высоты нижние блоки скрываются
	VisibleLayers    = 9  // Сколько слоёв остаётся видимыми под вершиной

	CullY = -10.0 // Обломки ниже этой высоты удаляются из сцены

	hueSteps = 24
)
