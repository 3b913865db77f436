package smbmsg

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDfsReferralRequestFixture(t *testing.T) {
	p := mustHex(t, "04005c004100440043002e0061007600690076002e006c006f00630061006c005c006400660073005c0044006f00630073000000")

	req, err := DecodeGetDfsReferralRequest(p)
	require.NoError(t, err)
	assert.Equal(t, uint16(DFS_REFERRAL_V4), req.MaxReferralLevel)
	assert.Equal(t, `\ADC.aviv.local\dfs\Docs`, req.RequestFileName)

	assert.Equal(t, hex.EncodeToString(p), hex.EncodeToString(req.Encode()))

	_, err = DecodeGetDfsReferralRequest(p[:3])
	assert.Error(t, err)
}

func TestGetDfsReferralRequestEx(t *testing.T) {
	req := &GetDfsReferralRequestEx{
		MaxReferralLevel: DFS_REFERRAL_V4,
		RequestFlags:     DFS_REQUEST_FLAG_SITE_NAME,
		RequestFileName:  `\ADC.aviv.local\dfs`,
		SiteName:         "Default-First-Site-Name",
	}

	got, err := DecodeGetDfsReferralRequestEx(req.Encode())
	require.NoError(t, err)
	assert.Equal(t, req, got)

	// Without the site name flag the site string stays off the wire.
	req.RequestFlags = 0
	got, err = DecodeGetDfsReferralRequestEx(req.Encode())
	require.NoError(t, err)
	assert.Empty(t, got.SiteName)
	assert.Equal(t, req.RequestFileName, got.RequestFileName)
}

// A two-target V4 referral response for \ADC.aviv.local\dfs\Docs. The
// DFS path and alternate path strings are shared between the entries.
const dfsReferralResponseFixture = "300002000200000004002200000004000807000044007600a8000000000000000000000000000000000004002200000000000807000022005400a800000000000000000000000000000000005c004100440043002e0061007600690076002e006c006f00630061006c005c006400660073005c0044006f006300730000005c004100440043002e0061007600690076002e006c006f00630061006c005c006400660073005c0044006f006300730000005c004100440043005c005300680061007200650073005c0044006f006300730000005c0046005300520056005c005300680061007200650073005c004d007900530068006100720065000000"

func TestGetDfsReferralResponseFixture(t *testing.T) {
	p := mustHex(t, dfsReferralResponseFixture)

	res, err := DecodeGetDfsReferralResponse(p)
	require.NoError(t, err)

	assert.Equal(t, uint16(48), res.PathConsumed)
	assert.Equal(t, uint32(DFS_STORAGE_SERVERS), res.ReferralHeaderFlags)
	require.Len(t, res.Referrals, 2)

	first := res.Referrals[0]
	assert.Equal(t, uint16(DFS_REFERRAL_V4), first.VersionNumber)
	assert.Equal(t, uint16(DFS_SERVER_NON_ROOT), first.ServerType)
	assert.Equal(t, uint16(DFS_ENTRY_TARGET_SET_BOUNDARY), first.ReferralEntryFlags)
	assert.Equal(t, uint32(1800), first.TimeToLive)
	assert.Equal(t, `\ADC.aviv.local\dfs\Docs`, first.DfsPath)
	assert.Equal(t, `\ADC.aviv.local\dfs\Docs`, first.DfsAlternatePath)
	assert.Equal(t, `\ADC\Shares\Docs`, first.NetworkAddress)
	assert.False(t, first.IsNameListReferral())

	second := res.Referrals[1]
	assert.Equal(t, uint16(0), second.ReferralEntryFlags)
	assert.Equal(t, `\ADC.aviv.local\dfs\Docs`, second.DfsPath)
	assert.Equal(t, `\FSRV\Shares\MyShare`, second.NetworkAddress)

	// Re-encoding shares one copy per field, the way the server did.
	q, err := res.Encode()
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(p), hex.EncodeToString(q))
}

func TestDfsReferralNameList(t *testing.T) {
	res := &GetDfsReferralResponse{
		PathConsumed:        32,
		ReferralHeaderFlags: DFS_REFERRAL_SERVERS,
		Referrals: []DfsReferral{{
			VersionNumber:      DFS_REFERRAL_V3,
			ServerType:         DFS_SERVER_ROOT,
			ReferralEntryFlags: DFS_ENTRY_NAME_LIST_REFERRAL,
			TimeToLive:         600,
			SpecialName:        `\DOMAIN`,
			ExpandedNames:      []string{`\adc.domain.test`, `\fsrv.domain.test`},
		}},
	}

	p, err := res.Encode()
	require.NoError(t, err)

	got, err := DecodeGetDfsReferralResponse(p)
	require.NoError(t, err)
	require.Len(t, got.Referrals, 1)
	assert.True(t, got.Referrals[0].IsNameListReferral())
	assert.Equal(t, `\DOMAIN`, got.Referrals[0].SpecialName)
	assert.Equal(t, res.Referrals[0].ExpandedNames, got.Referrals[0].ExpandedNames)
}

func TestDfsReferralV1V2(t *testing.T) {
	res := &GetDfsReferralResponse{
		PathConsumed: 16,
		Referrals: []DfsReferral{
			{VersionNumber: DFS_REFERRAL_V1, ServerType: DFS_SERVER_ROOT, NetworkAddress: `\srv\share`},
		},
	}

	p, err := res.Encode()
	require.NoError(t, err)
	got, err := DecodeGetDfsReferralResponse(p)
	require.NoError(t, err)
	assert.Equal(t, `\srv\share`, got.Referrals[0].NetworkAddress)

	res.Referrals = []DfsReferral{{
		VersionNumber:    DFS_REFERRAL_V2,
		Proximity:        2,
		TimeToLive:       300,
		DfsPath:          `\domain\root`,
		DfsAlternatePath: `\domain\root`,
		NetworkAddress:   `\srv\root`,
	}}

	p, err = res.Encode()
	require.NoError(t, err)
	got, err = DecodeGetDfsReferralResponse(p)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Referrals[0].Proximity)
	assert.Equal(t, `\domain\root`, got.Referrals[0].DfsPath)
	assert.Equal(t, `\srv\root`, got.Referrals[0].NetworkAddress)
}

func TestDfsReferralResponseMalformed(t *testing.T) {
	_, err := DecodeGetDfsReferralResponse(make([]byte, 4))
	assert.Error(t, err)

	// Count claims more entries than the buffer holds.
	p := make([]byte, 8)
	le.PutUint16(p[2:4], 3)
	_, err = DecodeGetDfsReferralResponse(p)
	assert.Error(t, err)

	// A string offset pointing outside the buffer.
	p = mustHex(t, dfsReferralResponseFixture)
	le.PutUint16(p[8+12:8+14], 0xfff0)
	_, err = DecodeGetDfsReferralResponse(p)
	assert.Error(t, err)
}

func FuzzDecodeGetDfsReferralResponse(f *testing.F) {
	f.Add(mustFuzzHex(dfsReferralResponseFixture))

	f.Fuzz(func(t *testing.T, p []byte) {
		res, err := DecodeGetDfsReferralResponse(p)
		if err != nil {
			return
		}
		if _, err := res.Encode(); err != nil {
			t.Fatalf("re-encode of a decoded referral response: %v", err)
		}
	})
}
