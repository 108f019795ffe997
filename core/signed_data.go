package core

import (
	"encoding/base64"
	"evcdr/entity"
	"evcdr/entity/cdr"
)

var natures = map[entity.MeteringValueKind]cdr.SignedValueNature{
	entity.MeteringStart:        cdr.NatureStart,
	entity.MeteringIntermediate: cdr.NatureIntermediate,
	entity.MeteringTariffChange: cdr.NatureIntermediate,
	entity.MeteringEnd:          cdr.NatureEnd,
}

// signedData collects one signed value per attested metering value, nil when none is signed
func signedData(session *entity.ChargingSession, defaultEncoding string, warnings *Warnings) *cdr.SignedData {
	var values []*cdr.SignedValue
	for i, value := range session.MeteringValues {
		if !value.IsSigned() {
			continue
		}
		nature, ok := natures[value.Kind]
		if !ok {
			warnings.Add("metering_values", "value %d has unknown kind %q, signature skipped", i, value.Kind)
			continue
		}
		values = append(values, &cdr.SignedValue{
			Nature:     nature,
			PlainData:  value.PlainData,
			SignedData: base64.StdEncoding.EncodeToString(value.SignedData),
		})
	}
	if len(values) == 0 {
		return nil
	}
	encoding := session.SignatureEncoding
	if encoding == "" {
		encoding = defaultEncoding
	}
	return &cdr.SignedData{
		EncodingMethod: encoding,
		PublicKey:      session.SignaturePublicKey,
		SignedValues:   values,
	}
}
