package location

import "time"

type ConnectorType string

const (
	Chademo           ConnectorType = "CHADEMO"
	ChaoJi            ConnectorType = "CHAOJI"
	DomesticA         ConnectorType = "DOMESTIC_A"
	DomesticB         ConnectorType = "DOMESTIC_B"
	DomesticC         ConnectorType = "DOMESTIC_C"
	DomesticE         ConnectorType = "DOMESTIC_E"
	DomesticF         ConnectorType = "DOMESTIC_F"
	DomesticG         ConnectorType = "DOMESTIC_G"
	GbtAC             ConnectorType = "GBT_AC"
	GbtDC             ConnectorType = "GBT_DC"
	Iec603092Single16 ConnectorType = "IEC_60309_2_single_16"
	Iec603092Three16  ConnectorType = "IEC_60309_2_three_16"
	Iec603092Three32  ConnectorType = "IEC_60309_2_three_32"
	Iec603092Three64  ConnectorType = "IEC_60309_2_three_64"
	Iec62196T1        ConnectorType = "IEC_62196_T1"
	Iec62196T1Combo   ConnectorType = "IEC_62196_T1_COMBO"
	Iec62196T2        ConnectorType = "IEC_62196_T2"
	Iec62196T2Combo   ConnectorType = "IEC_62196_T2_COMBO"
	Iec62196T3A       ConnectorType = "IEC_62196_T3A"
	Iec62196T3C       ConnectorType = "IEC_62196_T3C"
	Nema520           ConnectorType = "NEMA_5_20"
	Nema630           ConnectorType = "NEMA_6_30"
	Nema650           ConnectorType = "NEMA_6_50"
	Nema1030          ConnectorType = "NEMA_10_30"
	Nema1450          ConnectorType = "NEMA_14_50"
	Pantograph        ConnectorType = "PANTOGRAPH_BOTTOM_UP"
	PantographTopDown ConnectorType = "PANTOGRAPH_TOP_DOWN"
	TeslaR            ConnectorType = "TESLA_R"
	TeslaS            ConnectorType = "TESLA_S"
)

type ConnectorFormat string

const (
	FormatSocket ConnectorFormat = "SOCKET"
	FormatCable  ConnectorFormat = "CABLE"
)

type PowerType string

const (
	AC1Phase      PowerType = "AC_1_PHASE"
	AC2Phase      PowerType = "AC_2_PHASE"
	AC2PhaseSplit PowerType = "AC_2_PHASE_SPLIT"
	AC3Phase      PowerType = "AC_3_PHASE"
	DC            PowerType = "DC"
)

type Connector struct {
	Id               string          `json:"id" bson:"id" validate:"required,max=36"`
	Standard         ConnectorType   `json:"standard" bson:"standard" validate:"required"`
	Format           ConnectorFormat `json:"format" bson:"format" validate:"required,oneof=SOCKET CABLE"`
	PowerType        PowerType       `json:"power_type" bson:"power_type" validate:"required,oneof=AC_1_PHASE AC_2_PHASE AC_2_PHASE_SPLIT AC_3_PHASE DC"`
	MaxVoltage       int             `json:"max_voltage" bson:"max_voltage" validate:"gte=0"`
	MaxAmperage      int             `json:"max_amperage" bson:"max_amperage" validate:"gte=0"`
	MaxElectricPower int             `json:"max_electric_power,omitempty" bson:"max_electric_power,omitempty" validate:"omitempty,gte=0"`
	TariffIds        []string        `json:"tariff_ids,omitempty" bson:"tariff_ids,omitempty"`
	LastUpdated      time.Time       `json:"last_updated" bson:"last_updated"`
}
