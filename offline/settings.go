package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

// GetSettings returns the shop's single settings row, refreshed from the
// server when online. The device PIN hash never leaves the device and is
// carried over any refresh.
func (f *Facade) GetSettings(ctx context.Context) (*models.Setting, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	local, localErr := f.localSettings(ctx, shopId)
	if f.probe.Online(ctx) {
		if canonical, err := f.client.Settings.Get(ctx, shopId); err == nil {
			if localErr == nil {
				if local.Dirty() {
					return local, nil
				}
				canonical.DevicePinHash = local.DevicePinHash
			}
			if err := localstore.Put(ctx, f.store, canonical); err != nil {
				return nil, err
			}
			return canonical, nil
		} else {
			f.logger.WithField("module", "offline").Debug("settings fallback to local: " + err.Error())
		}
	}
	if localErr != nil {
		return nil, localErr
	}
	return local, nil
}

func (f *Facade) UpdateSettings(ctx context.Context, input *models.NewSetting) (*models.Setting, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	setting, err := f.localSettings(ctx, shopId)
	if err != nil {
		// The server seeds a settings row at shop signup, so a missing
		// local row is only an unsynced cache, not a new record.
		now := time.Now()
		setting = &models.Setting{ID: uuid.NewString(), ShopId: shopId, CreatedAt: now}
	}
	setting.ShopName = input.ShopName
	setting.CurrencyCode = input.CurrencyCode
	setting.Timezone = input.Timezone
	setting.ReceiptHeader = input.ReceiptHeader
	setting.ReceiptFooter = input.ReceiptFooter
	if input.DevicePin != "" {
		hash, err := utils.HashPin(input.DevicePin)
		if err != nil {
			return nil, err
		}
		setting.DevicePinHash = string(hash)
	}
	setting.UpdatedAt = time.Now()
	setting.LocallyModified = true

	pinHash := setting.DevicePinHash
	if f.probe.Online(ctx) {
		if canonical, err := f.client.Settings.Update(ctx, setting); err == nil {
			canonical.DevicePinHash = pinHash
			if err := localstore.Put(ctx, f.store, canonical); err != nil {
				return nil, err
			}
			return canonical, nil
		} else {
			f.logger.WithField("module", "offline").Debug("settings update fallback to queue: " + err.Error())
		}
	}
	if err := localstore.Put(ctx, f.store, setting); err != nil {
		return nil, err
	}
	if _, err := f.queue.EnqueueUpdate(ctx, shopId, models.TableSettings, setting.ID, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// VerifyDevicePin checks a PIN against the locally stored hash. A shop with
// no PIN configured accepts nothing.
func (f *Facade) VerifyDevicePin(ctx context.Context, pin string) (bool, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return false, err
	}
	setting, err := f.localSettings(ctx, shopId)
	if err != nil {
		return false, err
	}
	if setting.DevicePinHash == "" {
		return false, nil
	}
	return utils.ComparePin(setting.DevicePinHash, pin) == nil, nil
}

func (f *Facade) localSettings(ctx context.Context, shopId string) (*models.Setting, error) {
	var setting models.Setting
	err := f.store.DB().WithContext(ctx).Where("shop_id = ?", shopId).First(&setting).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &setting, nil
}
