package objectstore

// NewDemo builds a small seeded tree for dev mode: two floors, a few
// rooms, and variables of every type. Useful for poking at the API
// without a live host.
func NewDemo() *Mem {
	m := NewMem()

	m.RegisterProfile(ProfileInfo{
		Name: "~Intensity.100", Suffix: " %", MinValue: 0, MaxValue: 100, StepSize: 1,
	})
	m.RegisterProfile(ProfileInfo{
		Name: "~Temperature", Suffix: " °C", MinValue: -40, MaxValue: 80, StepSize: 0.5, Digits: 1,
	})
	m.RegisterProfile(ProfileInfo{
		Name: "~Switch",
		Associations: []ProfileAssociation{
			{Value: 0, Name: "Off"},
			{Value: 1, Name: "On"},
		},
	})

	ground := m.AddCategory(RootID, "Ground Floor")
	first := m.AddCategory(RootID, "First Floor")

	living := m.AddCategory(ground, "Living Room")
	kitchen := m.AddCategory(ground, "Kitchen")
	bedroom := m.AddCategory(first, "Bedroom")

	lamp := m.AddInstance(living, "Ceiling Lamp")
	m.AddVariable(lamp, VariableSpec{
		Name: "State", Ident: "STATE", Type: 0, Profile: "~Switch", Value: false,
	})
	m.AddVariable(lamp, VariableSpec{
		Name: "Brightness", Ident: "BRIGHTNESS", Type: 1, Profile: "~Intensity.100", Value: 0,
	})

	thermo := m.AddInstance(kitchen, "Thermostat")
	m.AddVariable(thermo, VariableSpec{
		Name: "Temperature", Ident: "TEMPERATURE", Type: 2, Profile: "~Temperature", Value: 21.5,
	})
	m.AddVariable(thermo, VariableSpec{
		Name: "Setpoint", Ident: "SETPOINT", Type: 2, Profile: "~Temperature", Value: 20.0,
	})

	blind := m.AddInstance(bedroom, "Blind")
	m.AddVariable(blind, VariableSpec{
		Name: "Position", Ident: "POSITION", Type: 1, Profile: "~Intensity.100", Value: 100,
	})
	m.AddVariable(bedroom, VariableSpec{
		Name: "Scene", Type: 3, Value: "relax",
	})

	return m
}
