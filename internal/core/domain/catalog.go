package domain

// Operation names of the SmartThings tool surface.
const (
	OpListDevices           = "list_devices"
	OpGetDevice             = "get_device"
	OpGetDeviceStatus       = "get_device_status"
	OpGetDeviceComponents   = "get_device_components"
	OpGetDeviceCapabilities = "get_device_capabilities"
	OpGetDeviceHealth       = "get_device_health"
	OpGetDevicePresentation = "get_device_presentation"
	OpExecuteCommand        = "execute_command"
	OpUpdateDevice          = "update_device"
	OpDeleteDevice          = "delete_device"

	OpListLocations    = "list_locations"
	OpGetLocation      = "get_location"
	OpGetLocationRooms = "get_location_rooms"
	OpCreateLocation   = "create_location"
	OpUpdateLocation   = "update_location"
	OpDeleteLocation   = "delete_location"

	OpListRooms  = "list_rooms"
	OpGetRoom    = "get_room"
	OpCreateRoom = "create_room"
	OpUpdateRoom = "update_room"
	OpDeleteRoom = "delete_room"

	OpListModes      = "list_modes"
	OpGetMode        = "get_mode"
	OpGetCurrentMode = "get_current_mode"
	OpSetMode        = "set_mode"

	OpListRules   = "list_rules"
	OpGetRule     = "get_rule"
	OpCreateRule  = "create_rule"
	OpUpdateRule  = "update_rule"
	OpDeleteRule  = "delete_rule"
	OpExecuteRule = "execute_rule"

	OpListScenes   = "list_scenes"
	OpGetScene     = "get_scene"
	OpExecuteScene = "execute_scene"
	OpCreateScene  = "create_scene"
	OpUpdateScene  = "update_scene"
	OpDeleteScene  = "delete_scene"

	OpGenerateContextAnalysis = "generate_context_analysis"
	OpGenerateExecutionPlan   = "generate_execution_plan"

	// OpListTools is answered by the transport itself and never reaches a dispatcher.
	OpListTools = "list_tools"
)

// Operation groups.
const (
	GroupDevices   = "devices"
	GroupLocations = "locations"
	GroupRooms     = "rooms"
	GroupModes     = "modes"
	GroupRules     = "rules"
	GroupScenes    = "scenes"
	GroupStructure = "structure"
)

func read(group, name, desc string, params ...string) Operation {
	return Operation{Name: name, Group: group, Description: desc, Cacheable: true, Params: params}
}

func write(group, name, desc string, invalidates []string, params ...string) Operation {
	return Operation{Name: name, Group: group, Description: desc, Mutating: true, Invalidates: invalidates, Params: params}
}

func local(group, name, desc string, params ...string) Operation {
	return Operation{Name: name, Group: group, Description: desc, Params: params}
}

// DefaultOperations returns the built-in SmartThings operation table.
func DefaultOperations() []Operation {
	return []Operation{
		read(GroupDevices, OpListDevices, "List devices, optionally filtered",
			"capability", "device_id", "location_id", "room_id"),
		read(GroupDevices, OpGetDevice, "Get a device", "device_id"),
		read(GroupDevices, OpGetDeviceStatus, "Get the status of a device", "device_id", "component_id", "capability_id"),
		read(GroupDevices, OpGetDeviceComponents, "List the components of a device", "device_id"),
		read(GroupDevices, OpGetDeviceCapabilities, "List the capabilities of a device component",
			"device_id", "component_id"),
		read(GroupDevices, OpGetDeviceHealth, "Get the health of a device", "device_id"),
		read(GroupDevices, OpGetDevicePresentation, "Get the presentation of a device", "device_id"),
		write(GroupDevices, OpExecuteCommand, "Execute a command on a device",
			[]string{OpGetDeviceStatus, OpGetDevice},
			"device_id", "component", "capability", "command", "arguments"),
		write(GroupDevices, OpUpdateDevice, "Rename a device",
			[]string{OpListDevices, OpGetDevice}, "device_id", "label"),
		write(GroupDevices, OpDeleteDevice, "Delete a device",
			[]string{OpListDevices}, "device_id"),

		read(GroupLocations, OpListLocations, "List locations"),
		read(GroupLocations, OpGetLocation, "Get a location", "location_id"),
		read(GroupLocations, OpGetLocationRooms, "List the rooms of a location", "location_id"),
		write(GroupLocations, OpCreateLocation, "Create a location",
			[]string{OpListLocations},
			"name", "country_code", "latitude", "longitude", "region_code", "locality", "address_lines"),
		write(GroupLocations, OpUpdateLocation, "Update a location",
			[]string{OpListLocations, OpGetLocation},
			"location_id", "name", "country_code", "latitude", "longitude", "region_code", "locality", "address_lines"),
		write(GroupLocations, OpDeleteLocation, "Delete a location",
			[]string{OpListLocations}, "location_id"),

		read(GroupRooms, OpListRooms, "List the rooms of a location", "location_id"),
		read(GroupRooms, OpGetRoom, "Get a room", "location_id", "room_id"),
		write(GroupRooms, OpCreateRoom, "Create a room",
			[]string{OpGetLocationRooms, OpListRooms}, "location_id", "name"),
		write(GroupRooms, OpUpdateRoom, "Rename a room",
			[]string{OpGetLocationRooms, OpListRooms, OpGetRoom}, "location_id", "room_id", "name"),
		write(GroupRooms, OpDeleteRoom, "Delete a room",
			[]string{OpGetLocationRooms, OpListRooms}, "location_id", "room_id"),

		read(GroupModes, OpListModes, "List the modes of a location", "location_id"),
		read(GroupModes, OpGetMode, "Get a mode", "location_id", "mode_id"),
		read(GroupModes, OpGetCurrentMode, "Get the current mode of a location", "location_id"),
		write(GroupModes, OpSetMode, "Set the current mode of a location",
			[]string{OpGetCurrentMode}, "location_id", "mode_id"),

		read(GroupRules, OpListRules, "List rules of a location", "location_id"),
		read(GroupRules, OpGetRule, "Get a rule", "rule_id", "location_id"),
		write(GroupRules, OpCreateRule, "Create a rule",
			[]string{OpListRules}, "location_id", "name", "actions", "triggers"),
		write(GroupRules, OpUpdateRule, "Update a rule",
			[]string{OpListRules, OpGetRule}, "rule_id", "location_id", "name", "actions", "triggers", "enabled"),
		write(GroupRules, OpDeleteRule, "Delete a rule",
			[]string{OpListRules, OpGetRule}, "rule_id", "location_id"),
		write(GroupRules, OpExecuteRule, "Execute a rule", nil, "rule_id", "location_id"),

		read(GroupScenes, OpListScenes, "List scenes", "location_id"),
		read(GroupScenes, OpGetScene, "Get a scene", "scene_id"),
		write(GroupScenes, OpExecuteScene, "Execute a scene", nil, "scene_id"),
		write(GroupScenes, OpCreateScene, "Create a scene",
			[]string{OpListScenes}, "location_id", "name", "icon", "colors", "actions"),
		write(GroupScenes, OpUpdateScene, "Update a scene",
			[]string{OpListScenes, OpGetScene}, "scene_id", "name", "icon", "colors", "actions"),
		write(GroupScenes, OpDeleteScene, "Delete a scene",
			[]string{OpListScenes, OpGetScene}, "scene_id"),

		local(GroupStructure, OpGenerateContextAnalysis, "Structure a request analysis",
			"intent", "entities", "ambiguities", "reasoning", "confidence"),
		local(GroupStructure, OpGenerateExecutionPlan, "Structure an execution plan",
			"tool_calls", "reasoning", "requires_user_input", "user_prompt"),
	}
}

// DefaultCatalog returns the built-in SmartThings catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultOperations()...)
	if err != nil {
		panic(err)
	}
	return c
}
