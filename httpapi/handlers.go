package httpapi

import (
	"io"
	"net/http"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type credentialsBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authController struct {
	auth services.IAuthService
}

func (ctl authController) register(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identity, token, err := ctl.auth.Register(body.Username, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": identity.ID, "username": identity.Name, "token": token})
}

func (ctl authController) login(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identity, token, err := ctl.auth.Login(body.Username, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": identity.ID, "username": identity.Name, "token": token})
}

func (ctl authController) listUsers(c *gin.Context) {
	identities, err := ctl.auth.ListUsers(currentIdentity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(identities, func(item domain.UserIdentity, _ int) gin.H {
		return gin.H{"id": item.ID, "username": item.Name}
	}))
}

type historyController struct {
	chat services.IChatService
}

func (ctl historyController) privateHistory(c *gin.Context) {
	messages, cursor, err := ctl.chat.PrivateHistory(
		currentIdentity(c).ID, c.Param("userId"), cursorParam(c), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "cursor": cursor})
}

func (ctl historyController) groupHistory(c *gin.Context) {
	messages, cursor, err := ctl.chat.GroupHistory(
		currentIdentity(c).ID, c.Param("groupId"), cursorParam(c), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "cursor": cursor})
}

func cursorParam(c *gin.Context) *string {
	if cursor := c.Query("cursor"); cursor != "" {
		return &cursor
	}
	return nil
}

type groupController struct {
	groups services.IGroupService
}

type createGroupBody struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"memberIds"`
}

func (ctl groupController) create(c *gin.Context) {
	var body createGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := ctl.groups.CreateGroup(currentIdentity(c).ID, body.Name, body.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (ctl groupController) list(c *gin.Context) {
	groups, err := ctl.groups.ListGroupsForUser(currentIdentity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (ctl groupController) get(c *gin.Context) {
	group, err := ctl.groups.GetGroup(c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

type fileController struct {
	uploads services.IUploadService
}

// upload is the external entry of the upload-to-message bridge: once
// the multipart body is stored, the bridge pushes a file-kind send
// through the regular ingest pipeline.
func (ctl fileController) upload(c *gin.Context) {
	target, err := targetChannel(c.PostForm("targetType"), c.PostForm("targetId"))
	if err != nil {
		respondError(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	part, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer part.Close()

	meta, message, err := ctl.uploads.Upload(
		c.Request.Context(), currentIdentity(c).ID, target, header.Filename, part)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": meta, "message": message})
}

func (ctl fileController) list(c *gin.Context) {
	target, err := targetChannel(c.Param("targetType"), c.Param("targetId"))
	if err != nil {
		respondError(c, err)
		return
	}
	metas, err := ctl.uploads.ListFiles(target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metas)
}

func (ctl fileController) download(c *gin.Context) {
	meta, file, contentType, err := ctl.uploads.Download(c.Param("fileId"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+meta.OriginalName+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func targetChannel(targetType, targetID string) (domain.Channel, error) {
	if targetID == "" {
		return domain.Channel{}, errors.ValidationError{Err: errors.ErrMissingTarget}
	}
	switch domain.ChannelKind(targetType) {
	case domain.ChannelPrivate:
		return domain.PrivateChannel(targetID), nil
	case domain.ChannelGroup:
		return domain.GroupChannel(targetID), nil
	default:
		return domain.Channel{}, errors.ValidationError{Err: errors.ErrMissingTarget}
	}
}
