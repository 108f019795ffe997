package core

import (
	"testing"

	"evcdr/entity"
	"evcdr/entity/cdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTokenPriority(t *testing.T) {
	tests := []struct {
		name      string
		auth      entity.AuthIdentity
		uid       string
		tokenType cdr.TokenType
	}{
		{
			name:      "token wins over everything",
			auth:      entity.AuthIdentity{TokenUid: "RFID1", RemoteId: "APP1", PublicKey: "KEY"},
			uid:       "RFID1",
			tokenType: cdr.RFID,
		},
		{
			name:      "token keeps its own type",
			auth:      entity.AuthIdentity{TokenUid: "APP0", TokenType: cdr.AppUser},
			uid:       "APP0",
			tokenType: cdr.AppUser,
		},
		{
			name:      "remote id",
			auth:      entity.AuthIdentity{RemoteId: "APP1", QrCodeId: "QR1"},
			uid:       "APP1",
			tokenType: cdr.AppUser,
		},
		{
			name:      "plug and charge",
			auth:      entity.AuthIdentity{PlugAndChargeId: "EMAID1", QrCodeId: "QR1"},
			uid:       "EMAID1",
			tokenType: cdr.Other,
		},
		{
			name:      "qr code",
			auth:      entity.AuthIdentity{QrCodeId: "QR1", PinId: "1234"},
			uid:       "QR1",
			tokenType: cdr.AdHocUser,
		},
		{
			name:      "pin",
			auth:      entity.AuthIdentity{PinId: "1234", PublicKey: "KEY"},
			uid:       "1234",
			tokenType: cdr.Other,
		},
		{
			name:      "public key",
			auth:      entity.AuthIdentity{PublicKey: "KEY"},
			uid:       "KEY",
			tokenType: cdr.Other,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := deriveToken(&entity.ChargingSession{CountryCode: "DE", PartyId: "ABC", Auth: tt.auth})
			require.NotNil(t, token)
			assert.Equal(t, tt.uid, token.Uid)
			assert.Equal(t, tt.tokenType, token.Type)
			assert.Equal(t, tt.uid, token.ContractId)
			assert.Equal(t, "DE", token.CountryCode)
		})
	}
}

func TestDeriveTokenEmspParty(t *testing.T) {
	token := deriveToken(&entity.ChargingSession{
		CountryCode: "DE",
		PartyId:     "ABC",
		Auth:        entity.AuthIdentity{TokenUid: "RFID1", ContractId: "NL-XYZ-C12345678-X", EmspCountryCode: "NL", EmspPartyId: "XYZ"},
	})
	require.NotNil(t, token)
	assert.Equal(t, "NL", token.CountryCode)
	assert.Equal(t, "XYZ", token.PartyId)
	assert.Equal(t, "NL-XYZ-C12345678-X", token.ContractId)
}

func TestDeriveTokenMissing(t *testing.T) {
	assert.Nil(t, deriveToken(&entity.ChargingSession{}))
}
