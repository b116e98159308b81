package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"content:view",
		"module:start",
		"chapter:start",
		"chapter:complete",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"dashboard:view",
	},
	"teacher": {
		"content:view",
		"content:author",
		"attempt:view-all",
	},
	"admin": {
		"*", // everything
	},
}
