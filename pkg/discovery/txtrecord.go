package discovery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeGatewayTXT creates TXT records for a gateway.
func EncodeGatewayTXT(info *GatewayInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyHomeID] = fmt.Sprintf("%08x", info.HomeID)
	txt[TXTKeyVersion] = info.Version

	tp := info.Transport
	if tp == "" {
		tp = TransportTCP
	}
	txt[TXTKeyTransport] = string(tp)

	if tp == TransportWebSocket && info.Path != "" {
		txt[TXTKeyPath] = info.Path
	}
	return txt
}

// DecodeGatewayTXT parses gateway TXT records.
func DecodeGatewayTXT(txt TXTRecordMap) (*GatewayInfo, error) {
	info := &GatewayInfo{}

	// Parse home id (required)
	hid, ok := txt[TXTKeyHomeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyHomeID)
	}
	if len(hid) != 8 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHomeID, hid)
	}
	v, err := strconv.ParseUint(hid, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHomeID, hid)
	}
	info.HomeID = uint32(v)

	// Parse version (required)
	info.Version, ok = txt[TXTKeyVersion]
	if !ok || info.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	// Optional fields
	info.Transport = TransportTCP
	if tp, ok := txt[TXTKeyTransport]; ok {
		info.Transport = Transport(strings.ToLower(tp))
		if !info.Transport.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTransport, tp)
		}
	}
	if info.Transport == TransportWebSocket {
		info.Path = txt[TXTKeyPath]
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings,
// sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if found {
			txt[k] = v
		} else if k != "" {
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
