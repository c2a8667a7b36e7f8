package discovery

import (
	"errors"
	"testing"
)

func TestGatewayTXTRoundTrip(t *testing.T) {
	info := &GatewayInfo{HomeID: 0xC0FFEE01, Version: "1.2", Transport: TransportWebSocket, Path: "/mesh"}

	txt := EncodeGatewayTXT(info)
	if txt[TXTKeyHomeID] != "c0ffee01" {
		t.Errorf("hid = %q", txt[TXTKeyHomeID])
	}

	strs := TXTRecordsToStrings(txt)
	want := []string{"hid=c0ffee01", "path=/mesh", "tp=ws", "ver=1.2"}
	if len(strs) != len(want) {
		t.Fatalf("strings = %v", strs)
	}
	for i := range want {
		if strs[i] != want[i] {
			t.Errorf("strings[%d] = %q, want %q", i, strs[i], want[i])
		}
	}

	got, err := DecodeGatewayTXT(StringsToTXTRecords(strs))
	if err != nil {
		t.Fatalf("DecodeGatewayTXT: %v", err)
	}
	if *got != *info {
		t.Errorf("decoded %+v, want %+v", got, info)
	}
}

func TestEncodeGatewayTXTDefaults(t *testing.T) {
	txt := EncodeGatewayTXT(&GatewayInfo{HomeID: 1, Version: "1", Path: "/ignored"})
	if txt[TXTKeyTransport] != "tcp" {
		t.Errorf("tp = %q, want tcp", txt[TXTKeyTransport])
	}
	if _, ok := txt[TXTKeyPath]; ok {
		t.Error("path must only be sent for ws gateways")
	}
}

func TestDecodeGatewayTXT(t *testing.T) {
	tests := []struct {
		name    string
		txt     TXTRecordMap
		want    GatewayInfo
		wantErr error
	}{
		{
			name: "minimal",
			txt:  TXTRecordMap{"hid": "0000abcd", "ver": "1"},
			want: GatewayInfo{HomeID: 0xABCD, Version: "1", Transport: TransportTCP},
		},
		{
			name: "uppercase transport",
			txt:  TXTRecordMap{"hid": "0000ABCD", "ver": "1", "tp": "WS"},
			want: GatewayInfo{HomeID: 0xABCD, Version: "1", Transport: TransportWebSocket},
		},
		{
			name:    "missing hid",
			txt:     TXTRecordMap{"ver": "1"},
			wantErr: ErrMissingRequired,
		},
		{
			name:    "short hid",
			txt:     TXTRecordMap{"hid": "abcd", "ver": "1"},
			wantErr: ErrInvalidHomeID,
		},
		{
			name:    "non-hex hid",
			txt:     TXTRecordMap{"hid": "zzzzzzzz", "ver": "1"},
			wantErr: ErrInvalidHomeID,
		},
		{
			name:    "missing version",
			txt:     TXTRecordMap{"hid": "00000001"},
			wantErr: ErrMissingRequired,
		},
		{
			name:    "unknown transport",
			txt:     TXTRecordMap{"hid": "00000001", "ver": "1", "tp": "udp"},
			wantErr: ErrInvalidTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeGatewayTXT(tt.txt)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"a=1", "flag", "", "b=x=y"})
	if txt["a"] != "1" || txt["b"] != "x=y" {
		t.Errorf("txt = %v", txt)
	}
	if v, ok := txt["flag"]; !ok || v != "" {
		t.Error("boolean flag not kept")
	}
	if len(txt) != 3 {
		t.Errorf("len = %d, want 3", len(txt))
	}
}

func TestValidateInstanceName(t *testing.T) {
	if err := ValidateInstanceName("meshcc-00000001"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateInstanceName(""); !errors.Is(err, ErrInstanceNameTooLong) {
		t.Errorf("empty name error = %v", err)
	}
	long := make([]byte, MaxInstanceNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateInstanceName(string(long)); !errors.Is(err, ErrInstanceNameTooLong) {
		t.Errorf("long name error = %v", err)
	}
}
