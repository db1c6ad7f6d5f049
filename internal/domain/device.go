package domain

// DeviceRecord is the provisioning record the cloud keeps for one logical
// client identity. Created once per bearer credential; immutable for the
// lifetime of the runtime instance that fetched it.
type DeviceRecord struct {
	DeviceName     string `json:"deviceName"`
	DeviceType     string `json:"deviceType"`
	LocalizedModel string `json:"localizedModel"`
	Model          string `json:"model"`
	Name           string `json:"name"`
	SystemName     string `json:"systemName"`
	SystemVersion  string `json:"systemVersion"`

	// URL and WebSocketURL are assigned by the cloud on creation/lookup.
	// WebSocketURL points at the realtime endpoint this device connects to.
	URL          string `json:"url,omitempty"`
	WebSocketURL string `json:"webSocketUrl,omitempty"`
}

// DeviceList is the device registry's listing envelope.
type DeviceList struct {
	Devices []DeviceRecord `json:"devices"`
}
