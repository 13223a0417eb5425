package config

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const (
	appID      = "upshift"
	idLen      = 12
	fallbackID = "upshift"
)

// MachineID derives a device ID from the machine ID. The raw machine ID is
// never published, only a hash keyed by the application.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable, using %q: %v", fallbackID, err)
		return fallbackID
	}
	if len(id) > idLen {
		id = id[:idLen]
	}
	return id
}
