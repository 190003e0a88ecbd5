package planet

// Section defaults. Normalization falls back to these when a section or a
// field inside it is missing or malformed.
const (
	defaultSurfacePressureKPa    = 101.325
	defaultGreenhouseCoefficient = 1.0
	defaultOceanCoverage         = 0.71
	defaultIceCapNorth           = 0.05
	defaultIceCapSouth           = 0.08
	defaultBiome                 = "barren"
	defaultAxialTilt             = 23.44
	defaultAlbedo                = 0.3
	defaultGreenhouseMultiplier  = 1.0
	defaultYearLength            = 365.25
)

func defaultComposition() []GasComponent {
	return []GasComponent{
		{Gas: "N2", Percentage: 78.08},
		{Gas: "O2", Percentage: 20.95},
		{Gas: "Ar", Percentage: 0.93},
		{Gas: "CO2", Percentage: 0.04},
	}
}

// Default returns a fully populated state: Earth-like air, a flat 64×32
// height field, a barren biome map and no civilization.
func Default() PlanetState {
	return PlanetState{
		Version:      CurrentVersion,
		Atmosphere:   defaultAtmosphere(),
		Geology:      defaultGeology(),
		Hydrology:    defaultHydrology(),
		Biosphere:    defaultBiosphere(),
		Civilization: defaultCivilization(),
		Climate:      defaultClimate(),
	}
}

func defaultAtmosphere() Atmosphere {
	return Atmosphere{
		Composition:           defaultComposition(),
		SurfacePressureKPa:    defaultSurfacePressureKPa,
		GreenhouseCoefficient: defaultGreenhouseCoefficient,
	}
}

func defaultHeightField() HeightField {
	return NewHeightField(DefaultGridWidth, DefaultGridHeight)
}

// NewHeightField allocates a zeroed width×height field in meters.
func NewHeightField(width, height int) HeightField {
	return HeightField{
		Width:  width,
		Height: height,
		Unit:   HeightUnit,
		Values: make([]float64, width*height),
	}
}

func defaultGeology() Geology {
	return Geology{
		Plates:      []TectonicPlate{},
		HeightField: defaultHeightField(),
		Volcanism:   0,
	}
}

func defaultRiverNetwork() RiverNetwork {
	return RiverNetwork{Rivers: []River{}}
}

func defaultIceCaps() IceCaps {
	return IceCaps{North: defaultIceCapNorth, South: defaultIceCapSouth}
}

func defaultHydrology() Hydrology {
	return Hydrology{
		OceanCoverage: defaultOceanCoverage,
		RiverNetwork:  defaultRiverNetwork(),
		IceCaps:       defaultIceCaps(),
	}
}

func defaultBiomeCell() BiomeCell {
	return BiomeCell{Biome: defaultBiome, Biodiversity: 0}
}

// NewBiomeMap allocates a width×height map filled with barren cells.
func NewBiomeMap(width, height int) BiomeMap {
	cells := make([]BiomeCell, width*height)
	for i := range cells {
		cells[i] = defaultBiomeCell()
	}
	return BiomeMap{Width: width, Height: height, Cells: cells}
}

func defaultBiosphere() Biosphere {
	return Biosphere{
		BiomeMap:          NewBiomeMap(DefaultGridWidth, DefaultGridHeight),
		BiodiversityIndex: 0,
	}
}

func defaultCivilization() Civilization {
	return Civilization{
		PopulationCenters: []PopulationCenter{},
		TechLevel:         TechNone,
		PollutionIndex:    0,
	}
}

func defaultClimate() Climate {
	return Climate{
		AxialTiltDeg:         defaultAxialTilt,
		Albedo:               defaultAlbedo,
		GreenhouseMultiplier: defaultGreenhouseMultiplier,
		CurrentTime:          0,
		YearLength:           defaultYearLength,
	}
}
