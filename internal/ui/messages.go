package ui

import "github.com/ivankudzin/botlist/internal/domain/enums"

const (
	NoPermissionMessage = "You do not have permission to run staff actions"
	FlowBusyMessage     = "Finish or cancel your current action first"
	UnknownCommand      = "Unknown command. Use /rpc or /rpclogs"
)

func StartMessage(role enums.Role) string {
	if !role.IsStaff() {
		return NoPermissionMessage
	}
	return "Staff actions: /rpc [action] runs one, /rpclogs shows the latest ones (role " + string(role) + ")"
}
