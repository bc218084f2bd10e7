package domain

import "time"

// Group is a named member set with a single admin. Membership is
// managed by the group API; the routing core only reads it to decide
// who may join or receive on the group's channel.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"admin"`
	MemberIDs []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewGroup builds a group whose admin is always part of the member set,
// deduplicating the provided ids.
func NewGroup(id, name, adminID string, memberIDs []string, createdAt time.Time) Group {
	seen := make(map[string]struct{}, len(memberIDs)+1)
	members := make([]string, 0, len(memberIDs)+1)
	for _, m := range append([]string{adminID}, memberIDs...) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		members = append(members, m)
	}
	return Group{ID: id, Name: name, AdminID: adminID, MemberIDs: members, CreatedAt: createdAt}
}

func (g Group) IsMember(userID string) bool {
	for _, m := range g.MemberIDs {
		if m == userID {
			return true
		}
	}
	return false
}
