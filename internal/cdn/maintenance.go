package cdn

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/protobuf/encoding/protowire"

	"redust/internal/config"
	"redust/internal/logging"
	"redust/internal/services"
)

// maintenanceBody is the fixed request payload the game client sends.
const maintenanceBody = "EAQ="

// ErrVersionMissing is returned when the maintenance response carries no
// bundle version for the requested quality.
var ErrVersionMissing = errors.New("bundle version missing from maintenance response")

// BundleVersion asks the maintenance endpoint for the current bundle version
// of quality (HD or SD).
func (c *Client) BundleVersion(ctx context.Context, quality string) (string, error) {
	_, body, err := c.open(ctx, "maintenance info", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.cfg.MaintenanceURL, strings.NewReader(maintenanceBody))
		if err != nil {
			return nil, fmt.Errorf("build maintenance request: %w", err)
		}
		req.Header.Set("Content-Type", "multipart/form-data")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	payload, err := io.ReadAll(body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "cdn", "maintenance info", "read response", err)
	}
	version, err := c.decodeMaintenance(payload, quality)
	if err != nil {
		return "", services.Wrap(services.ErrFatalInput, "cdn", "maintenance info", "decode response", err)
	}
	c.logger.Info("bundle version resolved",
		logging.String("quality", quality),
		logging.String("version", version),
	)
	return version, nil
}

// decodeMaintenance extracts the bundle version from the JSON envelope
// {"data": base64(protobuf)}.
func (c *Client) decodeMaintenance(payload []byte, quality string) (string, error) {
	data := gjson.GetBytes(payload, "data")
	if data.Type != gjson.String {
		return "", errors.New(`response has no "data" string`)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data.String()))
	if err != nil {
		return "", fmt.Errorf("decode data: %w", err)
	}

	market, typ, ok, err := lastField(raw, protowire.Number(c.cfg.MarketInfoField))
	if err != nil {
		return "", fmt.Errorf("parse maintenance message: %w", err)
	}
	if !ok || typ != protowire.BytesType {
		return "", fmt.Errorf("%w: market_info (field %d) absent", ErrVersionMissing, c.cfg.MarketInfoField)
	}

	field := c.cfg.BundleVersionField
	if strings.EqualFold(quality, config.QualitySD) {
		field = c.cfg.BundleVersionSD
	}
	value, typ, ok, err := lastField(market, protowire.Number(field))
	if err != nil {
		return "", fmt.Errorf("parse market_info: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: field %d absent for %s", ErrVersionMissing, field, quality)
	}
	var version string
	switch typ {
	case protowire.BytesType:
		version = strings.TrimSpace(string(value))
	case protowire.VarintType:
		v, _ := protowire.ConsumeVarint(value)
		version = strconv.FormatUint(v, 10)
	default:
		return "", fmt.Errorf("field %d has unexpected wire type %d", field, typ)
	}
	if version == "" {
		return "", fmt.Errorf("%w: empty for %s", ErrVersionMissing, quality)
	}
	return version, nil
}

// lastField scans a protobuf message for field num. For length-delimited
// fields the returned bytes are the payload; for varints they are the raw
// varint encoding. The last occurrence wins, as in proto3 merging.
func lastField(msg []byte, num protowire.Number) ([]byte, protowire.Type, bool, error) {
	var (
		found   []byte
		foundTy protowire.Type
		ok      bool
	)
	for len(msg) > 0 {
		n, typ, tagLen := protowire.ConsumeTag(msg)
		if tagLen < 0 {
			return nil, 0, false, protowire.ParseError(tagLen)
		}
		msg = msg[tagLen:]
		valLen := protowire.ConsumeFieldValue(n, typ, msg)
		if valLen < 0 {
			return nil, 0, false, protowire.ParseError(valLen)
		}
		if n == num {
			ok = true
			foundTy = typ
			if typ == protowire.BytesType {
				v, _ := protowire.ConsumeBytes(msg)
				found = bytes.Clone(v)
			} else {
				found = bytes.Clone(msg[:valLen])
			}
		}
		msg = msg[valLen:]
	}
	return found, foundTy, ok, nil
}
