// Package transformer masks the PII fields of validated login events.
package transformer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/cryptox"
	"github.com/dmitrijs2005/loginetl/internal/logging"
	"github.com/dmitrijs2005/loginetl/internal/models"
)

type Transformer struct {
	cipher cryptox.Cipher
	logger logging.Logger
}

func New(cipher cryptox.Cipher, logger logging.Logger) *Transformer {
	return &Transformer{cipher: cipher, logger: logger}
}

// Mask returns msg's event with ip and device_id replaced by their masked
// forms. It never fails: a field that cannot be masked is left null and
// its status says why.
func (t *Transformer) Mask(ctx context.Context, msg models.ValidatedMessage) models.MaskedRecord {
	rec := models.MaskedRecord{LoginEvent: msg.Event}

	rec.MaskedIP, rec.IPStatus = t.maskField(ctx, msg.MessageID, "ip", msg.Event.IP)
	rec.MaskedDeviceID, rec.DeviceIDStatus = t.maskField(ctx, msg.MessageID, "device_id", msg.Event.DeviceID)

	return rec
}

func (t *Transformer) maskField(ctx context.Context, messageID, name string, f models.Field) (*string, models.MaskStatus) {
	switch {
	case !f.Present:
		return nil, models.MaskStatusAbsent
	case !f.Valid:
		t.logger.Warn(ctx, "field not masked",
			"message_id", messageID, "field", name, "error", common.ErrNullField)
		return nil, models.MaskStatusNull
	}

	ct, err := t.cipher.Encrypt(f.Value)
	if err != nil {
		t.logger.Warn(ctx, "field not masked",
			"message_id", messageID, "field", name, "error", fmt.Errorf("encrypt %s: %w", name, err))
		return nil, models.MaskStatusFailed
	}
	return &ct, models.MaskStatusMasked
}
