package command

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// PermissionNames maps permission bits to the names shown in replies.
var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite: "Create Instant Invite",
	discordgo.PermissionKickMembers:         "Kick Members",
	discordgo.PermissionBanMembers:          "Ban Members",
	discordgo.PermissionAdministrator:       "Administrator",
	discordgo.PermissionManageChannels:      "Manage Channels",
	discordgo.PermissionAddReactions:        "Add Reactions",
	discordgo.PermissionViewAuditLogs:       "View Audit Logs",
	discordgo.PermissionViewChannel:         "View Channel",
	discordgo.PermissionSendMessages:        "Send Messages",
	discordgo.PermissionManageMessages:      "Manage Messages",
	discordgo.PermissionEmbedLinks:          "Embed Links",
	discordgo.PermissionAttachFiles:         "Attach Files",
	discordgo.PermissionReadMessageHistory:  "Read Message History",
	discordgo.PermissionMentionEveryone:     "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:   "Use External Emojis",
	discordgo.PermissionChangeNickname:      "Change Nickname",
	discordgo.PermissionManageNicknames:     "Manage Nicknames",
	discordgo.PermissionManageRoles:         "Manage Roles",
	discordgo.PermissionManageWebhooks:      "Manage Webhooks",
	discordgo.PermissionModerateMembers:     "Moderate Members",
}

// PermissionList names every bit set in mask, lowest bit first.
func PermissionList(mask int64) []string {
	var names []string
	for m := uint64(mask); m != 0; m &= m - 1 {
		bit := int64(1) << bits.TrailingZeros64(m)
		name, ok := PermissionNames[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", bit)
		}
		names = append(names, name)
	}
	return names
}

// IsAuthorized evaluates the accessibility rule and then the user permission
// set against the invoking member. Only the declared tier is checked; the
// permission set can only revoke. Missing member or guild context fails
// closed whenever a rule needs it.
func (c *Command) IsAuthorized(member *discordgo.Member, guild *discordgo.Guild) bool {
	authorized := true
	if c.access.Declared() {
		if !hasContext(member, guild) {
			return false
		}
		switch c.access.Tier {
		case TierOwner:
			authorized = isOwner(member, guild)
		case TierAdmin:
			authorized = hasAnyRole(member, c.roles.Admin) || isOwner(member, guild)
		case TierMod:
			authorized = hasAnyRole(member, c.roles.Admin, c.roles.Mod) || isOwner(member, guild)
		}
	}

	if authorized && c.perms.User != 0 {
		if !hasContext(member, guild) {
			return false
		}
		authorized = hasAll(MemberPermissions(member, guild), c.perms.User)
	}
	return authorized
}

// MissingClientPermissions returns the declared client permissions absent
// from have.
func (c *Command) MissingClientPermissions(have int64) int64 {
	if have&discordgo.PermissionAdministrator != 0 {
		return 0
	}
	return c.perms.Client &^ have
}

// MemberPermissions returns the guild-level permissions of member. The owner
// and Administrator holders get every permission. Permissions already
// resolved by the platform (interaction payloads) are used as-is.
func MemberPermissions(member *discordgo.Member, guild *discordgo.Guild) int64 {
	if isOwner(member, guild) {
		return discordgo.PermissionAll
	}
	perms := member.Permissions
	if perms == 0 {
		for _, role := range guild.Roles {
			if role.ID == guild.ID || slices.Contains(member.Roles, role.ID) {
				perms |= role.Permissions
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}

func hasContext(member *discordgo.Member, guild *discordgo.Guild) bool {
	return member != nil && member.User != nil && guild != nil
}

func isOwner(member *discordgo.Member, guild *discordgo.Guild) bool {
	return member.User != nil && guild.OwnerID != "" && member.User.ID == guild.OwnerID
}

func hasAnyRole(member *discordgo.Member, roleIDs ...string) bool {
	for _, held := range member.Roles {
		for _, id := range roleIDs {
			if id != "" && held == id {
				return true
			}
		}
	}
	return false
}

func hasAll(have, want int64) bool {
	return have&want == want
}
