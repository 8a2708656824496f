package service

import (
	"context"
	"errors"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupService runs the join workflow of study groups and keeps the group chat in step with
// membership.
type GroupService struct {
	groups      repo.GroupRepository
	connections repo.ConnectionRepository
	activity    ActivityLog
	notifier    Notifier
	logger      *zap.Logger
}

func NewGroupService(groups repo.GroupRepository, connections repo.ConnectionRepository, activity ActivityLog, notifier Notifier, logger *zap.Logger) *GroupService {
	return &GroupService{
		groups:      groups,
		connections: connections,
		activity:    activity,
		notifier:    notifier,
		logger:      logger,
	}
}

// Handle dispatches a group action. The returned chat id is set only by approvals.
func (s *GroupService) Handle(ctx context.Context, groupID string, in model.GroupActionInput) (string, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return "", err
	}

	switch in.Action {
	case model.GroupActionJoin:
		return "", s.RequestJoin(ctx, groupID, in.UserID)
	case model.GroupActionApprove:
		return s.Approve(ctx, groupID, in.UserID, in.ApproverID)
	default:
		return "", s.Reject(ctx, groupID, in.UserID, in.ApproverID)
	}
}

func (s *GroupService) RequestJoin(ctx context.Context, groupID, userID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}

	switch {
	case group.IsMember(userID):
		return apperr.Validationf("already a member")
	case group.IsPending(userID):
		return apperr.Validationf("join already requested")
	case group.IsFull():
		return apperr.Validationf("group is full")
	}

	return s.groups.AddPendingRequest(ctx, group.ID, userID)
}

// Approve admits a pending applicant and makes sure the group chat contains them.
func (s *GroupService) Approve(ctx context.Context, groupID, applicantID, approverID string) (string, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return "", err
	}
	if group.CreatorID != approverID {
		return "", apperr.Forbidden("only the group creator can approve requests")
	}
	if !group.IsPending(applicantID) {
		return "", apperr.Validationf("no pending request from %s", applicantID)
	}
	if group.IsFull() {
		return "", apperr.Validationf("group is full")
	}

	if err := s.groups.ApproveRequest(ctx, group.ID, applicantID); err != nil {
		return "", err
	}

	members := append(append([]string{}, group.Members...), applicantID)
	chatID, err := s.ensureChat(ctx, group, applicantID, members)
	if err != nil {
		return "", err
	}

	s.activity.Record(applicantID, model.ActivityJoinedGroup, map[string]any{
		"groupId":   groupID,
		"groupName": group.Name,
	})
	publish(s.notifier, s.logger, event.EventMemberJoined, chatID.Hex(), model.MemberJoined{
		ConnectionID: chatID.Hex(),
		UserID:       applicantID,
		GroupID:      groupID,
	})

	return chatID.Hex(), nil
}

func (s *GroupService) Reject(ctx context.Context, groupID, applicantID, approverID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != approverID {
		return apperr.Forbidden("only the group creator can reject requests")
	}
	return s.groups.RemovePendingRequest(ctx, group.ID, applicantID)
}

func (s *GroupService) ensureChat(ctx context.Context, group *model.StudyGroup, applicantID string, members []string) (primitive.ObjectID, error) {
	if group.ChatID != nil {
		err := s.connections.AddMember(ctx, *group.ChatID, applicantID)
		if err == nil {
			return *group.ChatID, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return primitive.NilObjectID, err
		}
		s.logger.Warn("group chat back-reference is stale, recreating",
			zap.String("group_id", group.ID.Hex()),
			zap.String("chat_id", group.ChatID.Hex()),
		)
	}

	conn, err := s.connections.CreateGroupConnection(ctx, group.ID, group.CreatorID, members)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := s.groups.SetGroupChatID(ctx, group.ID, conn.ID); err != nil {
		return primitive.NilObjectID, err
	}
	return conn.ID, nil
}

func (s *GroupService) load(ctx context.Context, groupID string) (*model.StudyGroup, error) {
	oid, ok := model.ParseID(groupID)
	if !ok {
		return nil, apperr.Validationf("malformed groupId %q", groupID)
	}
	group, err := s.groups.GetGroupByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NotFound("study group", groupID)
	}
	return group, nil
}
