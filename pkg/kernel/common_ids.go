package kernel

// UserID identifies a User document. Fresh ids are version-4 UUIDs; the
// system user is pinned to a sentinel value (see internal/bootstrap).
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// RoleID identifies a Role document. Two sentinel ids (Admin, Default)
// always exist; see internal/bootstrap.
type RoleID string

func NewRoleID(id string) RoleID { return RoleID(id) }
func (r RoleID) String() string  { return string(r) }
func (r RoleID) IsEmpty() bool   { return string(r) == "" }
