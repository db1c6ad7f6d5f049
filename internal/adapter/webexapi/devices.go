package webexapi

import (
	"context"
	"errors"
	"net/http"

	"webexbot/internal/domain"
)

// Fixed identity fields of the device descriptor. The registry matches
// devices on Name, so only that field varies per deployment.
const (
	descriptorDeviceName    = "go-websocket-client"
	descriptorDeviceType    = "DESKTOP"
	descriptorModel         = "go"
	descriptorSystemVersion = "0.1"
)

func (c *Client) deviceDescriptor() domain.DeviceRecord {
	return domain.DeviceRecord{
		DeviceName:     descriptorDeviceName,
		DeviceType:     descriptorDeviceType,
		LocalizedModel: descriptorModel,
		Model:          descriptorModel,
		Name:           c.deviceName,
		SystemName:     c.deviceName,
		SystemVersion:  descriptorSystemVersion,
	}
}

// ListDevices fetches every device registered under the bearer credential.
// A 404 from the registry means no devices exist yet and yields an empty
// list, not an error.
func (c *Client) ListDevices(ctx context.Context) (*domain.DeviceList, error) {
	var list domain.DeviceList
	err := c.do(ctx, http.MethodGet, c.deviceURL+"/devices", nil, &list)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return &domain.DeviceList{}, nil
		}
		return nil, domain.WrapOp("Client.ListDevices", err)
	}
	return &list, nil
}

// CreateDevice registers a new device and returns the record the cloud
// assigned, including the realtime endpoint URL.
func (c *Client) CreateDevice(ctx context.Context, device domain.DeviceRecord) (*domain.DeviceRecord, error) {
	var created domain.DeviceRecord
	err := c.do(ctx, http.MethodPost, c.deviceURL+"/devices", device, &created)
	if err != nil {
		return nil, domain.WrapOp("Client.CreateDevice", err)
	}
	return &created, nil
}

// ResolveOrCreateDevice resolves the device identity for this runtime.
//
// With preferExisting, the registry's device list is scanned for an exact
// name match first, so repeated runtime restarts reuse one device instead
// of accumulating duplicates. Without a match (or with preferExisting
// false) a new device is registered. Any failure is a provisioning failure:
// fatal to runtime start, surfaced to the operator, never retried here.
func (c *Client) ResolveOrCreateDevice(ctx context.Context, preferExisting bool) (*domain.DeviceRecord, error) {
	const op = "Client.ResolveOrCreateDevice"

	desc := c.deviceDescriptor()

	if preferExisting {
		c.logger.Debug("retrieving device list", "name", desc.Name)
		list, err := c.ListDevices(ctx)
		if err != nil {
			return nil, domain.NewDomainError(op, domain.ErrProvisionFailure, err.Error())
		}
		for i := range list.Devices {
			// First exact name match wins.
			if list.Devices[i].Name == desc.Name {
				c.logger.Debug("reusing existing device", "name", desc.Name)
				return &list.Devices[i], nil
			}
		}
	}

	c.logger.Info("device does not exist, creating", "name", desc.Name)
	created, err := c.CreateDevice(ctx, desc)
	if err != nil {
		return nil, domain.NewDomainError(op, domain.ErrProvisionFailure, err.Error())
	}
	c.logger.Info("registered new device", "name", created.Name)
	return created, nil
}
