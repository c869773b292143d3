package fuel

import "github.com/raterudder/fuelcast/pkg/types"

var references = []types.FuelReference{
	{
		Key:                     types.FuelOil2,
		Name:                    "Heating Oil (#2)",
		Unit:                    "gallon",
		UnitPlural:              "gallons",
		BTUPerUnit:              138500,
		TypicalSystemEfficiency: 0.84,
		CO2LbsPerMMBTU:          163.45,
		DefaultPrice:            3.95,
		InputMode:               types.InputModeDelivery,
	},
	{
		Key:                     types.FuelPropane,
		Name:                    "Propane",
		Unit:                    "gallon",
		UnitPlural:              "gallons",
		BTUPerUnit:              91500,
		TypicalSystemEfficiency: 0.90,
		CO2LbsPerMMBTU:          139.05,
		DefaultPrice:            2.95,
		InputMode:               types.InputModeDelivery,
	},
	{
		Key:                     types.FuelNaturalGas,
		Name:                    "Natural Gas",
		Unit:                    "therm",
		UnitPlural:              "therms",
		BTUPerUnit:              100000,
		TypicalSystemEfficiency: 0.92,
		CO2LbsPerMMBTU:          116.65,
		DefaultPrice:            1.60,
		InputMode:               types.InputModeBilling,
	},
	{
		Key:                     types.FuelWoodPellets,
		Name:                    "Wood Pellets",
		Unit:                    "ton",
		UnitPlural:              "tons",
		BTUPerUnit:              16500000,
		TypicalSystemEfficiency: 0.80,
		CO2LbsPerMMBTU:          0,
		DefaultPrice:            350,
		InputMode:               types.InputModeDelivery,
	},
	{
		Key:                     types.FuelElectricityResistance,
		Name:                    "Electric Resistance",
		Unit:                    "kWh",
		UnitPlural:              "kWh",
		BTUPerUnit:              3412,
		TypicalSystemEfficiency: 1.0,
		CO2LbsPerMMBTU:          250,
		DefaultPrice:            0.18,
		InputMode:               types.InputModeBilling,
	},
	{
		Key:                     types.FuelElectricityHeatPump,
		Name:                    "Heat Pump",
		Unit:                    "kWh",
		UnitPlural:              "kWh",
		BTUPerUnit:              3412,
		TypicalSystemEfficiency: 2.8,
		CO2LbsPerMMBTU:          250,
		DefaultPrice:            0.18,
		InputMode:               types.InputModeBilling,
	},
	{
		Key:                     types.FuelCordwood,
		Name:                    "Cordwood",
		Unit:                    "cord",
		UnitPlural:              "cords",
		BTUPerUnit:              20000000,
		TypicalSystemEfficiency: 0.65,
		CO2LbsPerMMBTU:          0,
		DefaultPrice:            300,
		InputMode:               types.InputModeDelivery,
	},
	{
		Key:                     types.FuelKerosene,
		Name:                    "Kerosene",
		Unit:                    "gallon",
		UnitPlural:              "gallons",
		BTUPerUnit:              135000,
		TypicalSystemEfficiency: 0.85,
		CO2LbsPerMMBTU:          159.4,
		DefaultPrice:            4.50,
		InputMode:               types.InputModeDelivery,
	},
}

// References returns a copy of the built-in fuel reference table.
func References() []types.FuelReference {
	refs := make([]types.FuelReference, len(references))
	copy(refs, references)
	return refs
}
