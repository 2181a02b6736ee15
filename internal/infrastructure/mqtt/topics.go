package mqtt

import "fmt"

// Topic prefixes for the Gray Bridge MQTT surface.
//
// All topics use the flat scheme: graybridge/{category}/{id}/{leaf}
const (
	// TopicPrefix is the base for all Gray Bridge topics.
	TopicPrefix = "graybridge"

	// TopicPrefixVariable is the base for per-variable topics.
	TopicPrefixVariable = "graybridge/variable"

	// TopicPrefixDevice is the base for logical-device topics.
	TopicPrefixDevice = "graybridge/device"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graybridge/system"
)

// Topics provides builders for Gray Bridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.VariableState(12345)
//	// Returns: "graybridge/variable/12345/state"
type Topics struct{}

// VariableState returns the topic carrying a variable's post-write
// state announcements.
//
// Example: graybridge/variable/12345/state
func (Topics) VariableState(varID int) string {
	return fmt.Sprintf("%s/%d/state", TopicPrefixVariable, varID)
}

// VariableSet returns the topic on which external clients request a
// variable write.
//
// Example: graybridge/variable/12345/set
func (Topics) VariableSet(varID int) string {
	return fmt.Sprintf("%s/%d/set", TopicPrefixVariable, varID)
}

// DeviceState returns the state topic for a registered logical device.
//
// Example: graybridge/device/var-12345/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixDevice, deviceID)
}

// SystemStatus returns the bridge status topic, also used as the LWT topic.
//
// Example: graybridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllVariableSets returns a pattern matching every variable set request.
//
// Pattern: graybridge/variable/+/set
func (Topics) AllVariableSets() string {
	return fmt.Sprintf("%s/+/set", TopicPrefixVariable)
}

// AllVariableStates returns a pattern matching every variable state announcement.
//
// Pattern: graybridge/variable/+/state
func (Topics) AllVariableStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixVariable)
}
