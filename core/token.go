package core

import (
	"evcdr/entity"
	"evcdr/entity/cdr"
)

// deriveToken picks the first populated auth source in priority order:
// token, remote id, plug and charge, QR code, PIN, public key
func deriveToken(session *entity.ChargingSession) *cdr.CdrToken {
	auth := session.Auth
	var uid string
	var tokenType cdr.TokenType
	switch {
	case auth.TokenUid != "":
		uid, tokenType = auth.TokenUid, auth.TokenType
		if tokenType == "" {
			tokenType = cdr.RFID
		}
	case auth.RemoteId != "":
		uid, tokenType = auth.RemoteId, cdr.AppUser
	case auth.PlugAndChargeId != "":
		uid, tokenType = auth.PlugAndChargeId, cdr.Other
	case auth.QrCodeId != "":
		uid, tokenType = auth.QrCodeId, cdr.AdHocUser
	case auth.PinId != "":
		uid, tokenType = auth.PinId, cdr.Other
	case auth.PublicKey != "":
		uid, tokenType = auth.PublicKey, cdr.Other
	default:
		return nil
	}

	token := &cdr.CdrToken{
		CountryCode: auth.EmspCountryCode,
		PartyId:     auth.EmspPartyId,
		Uid:         uid,
		Type:        tokenType,
		ContractId:  auth.ContractId,
	}
	if token.CountryCode == "" {
		token.CountryCode = session.CountryCode
	}
	if token.PartyId == "" {
		token.PartyId = session.PartyId
	}
	if token.ContractId == "" {
		token.ContractId = uid
	}
	return token
}
