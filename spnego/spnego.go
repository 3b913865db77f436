// Package spnego encodes and decodes the SPNEGO tokens carried in the
// security buffers of NEGOTIATE and SESSION_SETUP messages (RFC 4178).
// Tokens are emitted as DER but accepted as BER, since real servers emit
// indefinite-length and non-minimal encodings.
package spnego

import (
	"encoding/asn1"
	"errors"

	"github.com/geoffgarside/ber"
)

var (
	SpnegoOid     = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 2}
	NlmpOid       = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 10}
	KerberosOid   = asn1.ObjectIdentifier{1, 2, 840, 113554, 1, 2, 2}
	MsKerberosOid = asn1.ObjectIdentifier{1, 2, 840, 48018, 1, 2, 2}
)

const (
	AcceptCompleted  = asn1.Enumerated(0)
	AcceptIncomplete = asn1.Enumerated(1)
	Reject           = asn1.Enumerated(2)
	RequestMic       = asn1.Enumerated(3)
)

type NegTokenInit struct {
	MechTypes   []asn1.ObjectIdentifier `asn1:"optional,explicit,omitempty,tag:0"`
	MechToken   []byte                  `asn1:"optional,explicit,omitempty,tag:2"`
	MechListMIC []byte                  `asn1:"optional,explicit,omitempty,tag:3"`
}

type NegTokenResp struct {
	NegState      asn1.Enumerated       `asn1:"optional,explicit,tag:0"`
	SupportedMech asn1.ObjectIdentifier `asn1:"optional,explicit,omitempty,tag:1"`
	ResponseToken []byte                `asn1:"optional,explicit,omitempty,tag:2"`
	MechListMIC   []byte                `asn1:"optional,explicit,omitempty,tag:3"`
}

// EncodeNegTokenInit builds the initial GSS-API token: an application 0
// wrapper holding the SPNEGO OID and the [0]-tagged NegTokenInit.
func EncodeNegTokenInit(mechTypes []asn1.ObjectIdentifier, mechToken []byte) ([]byte, error) {
	inner, err := asn1.Marshal(NegTokenInit{
		MechTypes: mechTypes,
		MechToken: mechToken,
	})
	if err != nil {
		return nil, err
	}

	tagged, err := asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        0,
		IsCompound: true,
		Bytes:      inner,
	})
	if err != nil {
		return nil, err
	}

	oid, err := asn1.Marshal(SpnegoOid)
	if err != nil {
		return nil, err
	}

	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassApplication,
		Tag:        0,
		IsCompound: true,
		Bytes:      append(oid, tagged...),
	})
}

func DecodeNegTokenInit(bs []byte) (*NegTokenInit, error) {
	var gss asn1.RawValue
	if _, err := ber.Unmarshal(bs, &gss); err != nil {
		return nil, err
	}
	if gss.Class != asn1.ClassApplication || gss.Tag != 0 {
		return nil, errors.New("spnego: not a GSS-API initial token")
	}

	var oid asn1.ObjectIdentifier
	rest, err := ber.Unmarshal(gss.Bytes, &oid)
	if err != nil {
		return nil, err
	}
	if !oid.Equal(SpnegoOid) {
		return nil, errors.New("spnego: unexpected token mechanism")
	}

	var tagged asn1.RawValue
	if _, err := ber.Unmarshal(rest, &tagged); err != nil {
		return nil, err
	}
	if tagged.Class != asn1.ClassContextSpecific || tagged.Tag != 0 {
		return nil, errors.New("spnego: missing negTokenInit")
	}

	init := new(NegTokenInit)
	if _, err := ber.Unmarshal(tagged.Bytes, init); err != nil {
		return nil, err
	}

	return init, nil
}

// EncodeNegTokenResp builds a subsequent token: the bare [1]-tagged
// NegTokenResp, without the GSS-API wrapper.
func EncodeNegTokenResp(negState asn1.Enumerated, supportedMech asn1.ObjectIdentifier, responseToken, mechListMIC []byte) ([]byte, error) {
	inner, err := asn1.Marshal(NegTokenResp{
		NegState:      negState,
		SupportedMech: supportedMech,
		ResponseToken: responseToken,
		MechListMIC:   mechListMIC,
	})
	if err != nil {
		return nil, err
	}

	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        1,
		IsCompound: true,
		Bytes:      inner,
	})
}

func DecodeNegTokenResp(bs []byte) (*NegTokenResp, error) {
	var tagged asn1.RawValue
	if _, err := ber.Unmarshal(bs, &tagged); err != nil {
		return nil, err
	}
	if tagged.Class != asn1.ClassContextSpecific || tagged.Tag != 1 {
		return nil, errors.New("spnego: not a negTokenResp")
	}

	resp := new(NegTokenResp)
	if _, err := ber.Unmarshal(tagged.Bytes, resp); err != nil {
		return nil, err
	}

	return resp, nil
}
