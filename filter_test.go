package virtuallink_test

import (
	"testing"

	"github.com/Jatsekku/virtualLink"
	"github.com/Jatsekku/virtualLink/codec"
)

func TestFilterChannelMatches(t *testing.T) {
	f := virtuallink.Filter{Codec: codec.Simple{}}
	if !f.ChannelMatches(20, 20) {
		t.Fatalf("expected channel match")
	}
	if f.ChannelMatches(20, 21) {
		t.Fatalf("expected channel mismatch")
	}
}

func TestFilterPANIDMatches(t *testing.T) {
	f := virtuallink.Filter{Codec: codec.Simple{}}

	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber:   1,
		DestinationPANID: 0x2137,
		DestinationMode:  virtuallink.AddressModeShort,
		DestinationShort: 0x0420,
	})
	if err != nil {
		t.Fatalf("build data frame: %v", err)
	}

	if !f.PANIDMatches(mpdu, 0x2137) {
		t.Fatalf("expected pan-id match")
	}
	if f.PANIDMatches(mpdu, 0xAAAA) {
		t.Fatalf("expected pan-id mismatch")
	}
	if f.PANIDMatches(mpdu, virtuallink.BroadcastPANID) {
		t.Fatalf("a radio pan id of 0xFFFF must not accept a frame addressed to pan 0x2137")
	}
}

func TestFilterPANIDMatchesBroadcastFrame(t *testing.T) {
	f := virtuallink.Filter{Codec: codec.Simple{}}
	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber:   1,
		DestinationPANID: virtuallink.BroadcastPANID,
		DestinationMode:  virtuallink.AddressModeShort,
		DestinationShort: 0x0420,
	})
	if err != nil {
		t.Fatalf("build data frame: %v", err)
	}
	if !f.PANIDMatches(mpdu, 0x2137) {
		t.Fatalf("broadcast destination pan-id should match any radio pan-id")
	}
}

func TestFilterAddressMatchesShort(t *testing.T) {
	f := virtuallink.Filter{Codec: codec.Simple{}}
	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber:   1,
		DestinationPANID: 0x2137,
		DestinationMode:  virtuallink.AddressModeShort,
		DestinationShort: 0x0420,
	})
	if err != nil {
		t.Fatalf("build data frame: %v", err)
	}

	if !f.AddressMatches(mpdu, 0x0420, [8]byte{}) {
		t.Fatalf("expected address match")
	}
	if f.AddressMatches(mpdu, 0x1234, [8]byte{}) {
		t.Fatalf("expected address mismatch")
	}
}

func TestFilterAddressMatchesExtendedHasNoBroadcast(t *testing.T) {
	f := virtuallink.Filter{Codec: codec.Simple{}}
	ext := [8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber:   1,
		DestinationPANID: 0x2137,
		DestinationMode:  virtuallink.AddressModeExtended,
		DestinationExt:   ext,
	})
	if err != nil {
		t.Fatalf("build data frame: %v", err)
	}

	if !f.AddressMatches(mpdu, 0, ext) {
		t.Fatalf("expected extended address match")
	}
	all0xFF := [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if f.AddressMatches(mpdu, 0xFFFF, all0xFF) {
		t.Fatalf("extended addresses must not broadcast-match")
	}
}
