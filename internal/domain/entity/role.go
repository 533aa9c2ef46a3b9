package entity

// Roles de usuario emitidos en el token.
const (
	RoleCitizen         = "CITIZEN"
	RoleProvincialAdmin = "PROVINCIAL_ADMIN"
	RoleMunicipalAdmin  = "MUNICIPAL_ADMIN"
	RoleResponseTeam    = "RESPONSE_TEAM"
	RoleEvacCenterStaff = "EVAC_CENTER_STAFF"
)

// LedgerWriterRoles roles que pueden registrar movimientos en un centro.
var LedgerWriterRoles = []string{RoleProvincialAdmin, RoleMunicipalAdmin, RoleEvacCenterStaff}
