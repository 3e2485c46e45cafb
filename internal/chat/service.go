// Package chat содержит ядро мессенджера: лог сообщений чатов и строки списка чатов каждого
// пользователя, перевод при отправке, закрепление/архив/категории, реакции, избранное,
// блокировки и индикатор набора текста.
//
// Service общий для процесса; Manager(ownerID): представление одного пользователя
// поверх его хранилища устройства (storage.Namespace) и общих справочников users/groups.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/repository"
	"github.com/lingochat/internal/storage"
	"github.com/lingochat/internal/translate"
)

const DefaultMaxPinned = 5

// Notifier получает события после фиксации изменений. Ошибки доставки: забота реализации.
type Notifier interface {
	MessageDelivered(ctx context.Context, ownerID string, msg *model.Message)
	ConversationUpdated(ctx context.Context, ownerID string, conv *model.Conversation)
	TypingChanged(ctx context.Context, viewerID string, ev TypingEvent)
}

type Options struct {
	MaxPinned int
	TypingTTL time.Duration
	Clock     func() time.Time
	NewID     func() string
}

type Service struct {
	root   storage.DocumentStore
	tr     translate.Translator
	users  *repository.UserRepository
	groups *repository.GroupRepository
	typing *typingTracker
	opts   Options

	// dirMu сериализует read-modify-write общих документов users/groups.
	dirMu sync.Mutex
	// owners держит мьютекс на владельца, документы устройства меняются целиком.
	owners sync.Map

	nmu       sync.RWMutex
	notifiers []Notifier
}

func NewService(root storage.DocumentStore, tr translate.Translator, opts Options) *Service {
	if opts.MaxPinned <= 0 {
		opts.MaxPinned = DefaultMaxPinned
	}
	if opts.TypingTTL <= 0 {
		opts.TypingTTL = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if tr == nil {
		tr = translate.NewStub(nil, nil)
	}
	return &Service{
		root:   root,
		tr:     tr,
		users:  repository.NewUserRepository(root),
		groups: repository.NewGroupRepository(root),
		typing: newTypingTracker(opts.TypingTTL, opts.Clock),
		opts:   opts,
	}
}

func (s *Service) AddNotifier(n Notifier) {
	s.nmu.Lock()
	s.notifiers = append(s.notifiers, n)
	s.nmu.Unlock()
}

func (s *Service) notify(fn func(n Notifier)) {
	s.nmu.RLock()
	ns := make([]Notifier, len(s.notifiers))
	copy(ns, s.notifiers)
	s.nmu.RUnlock()
	for _, n := range ns {
		fn(n)
	}
}

func (s *Service) Translator() translate.Translator { return s.tr }

func (s *Service) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := s.owners.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// NewUser: данные регистрации. Пустой ID генерируется.
type NewUser struct {
	ID                string `json:"id,omitempty"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	PreferredLanguage string `json:"preferredLanguage"`
	AvatarURL         string `json:"avatarUrl,omitempty"`
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	lang := translate.DefaultLanguage
	if strings.TrimSpace(in.PreferredLanguage) != "" {
		var err error
		if lang, err = translate.Normalize(in.PreferredLanguage); err != nil {
			return nil, err
		}
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.opts.NewID()
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = username
	}

	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return nil, fmt.Errorf("%w: id %s exists", ErrInvalidInput, id)
		}
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}
	u := &model.User{
		ID:                id,
		Username:          username,
		DisplayName:       display,
		PreferredLanguage: lang,
		Status:            model.UserStatusOffline,
		BlockedUsers:      []string{},
		AvatarURL:         in.AvatarURL,
		CreatedAt:         s.opts.Clock().UTC(),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	logger.Infof("chat: user created %s", logger.Fields{"id": u.ID, "username": u.Username, "lang": u.PreferredLanguage})
	return u, nil
}

func (s *Service) User(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// updateUser применяет fn к записи пользователя под dirMu.
func (s *Service) updateUser(ctx context.Context, id string, fn func(u *model.User) error) (*model.User, error) {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateGroup создаёт группу; создатель: первый участник и администратор.
// Участники получают язык из своего профиля на момент вступления.
func (s *Service) CreateGroup(ctx context.Context, creatorID, name string, memberIDs []string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("creator %s: %w", creatorID, err)
	}
	now := s.opts.Clock().UTC()
	g := &model.Group{
		ID:        s.opts.NewID(),
		Name:      name,
		Admins:    []string{creator.ID},
		CreatedBy: creator.ID,
		CreatedAt: now,
		Members: []model.GroupMember{{
			UserID:            creator.ID,
			PreferredLanguage: creator.PreferredLanguage,
			Role:              model.GroupRoleAdmin,
			JoinedAt:          now,
		}},
	}
	seen := map[string]bool{creator.ID: true}
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", id, err)
		}
		g.Members = append(g.Members, model.GroupMember{
			UserID:            u.ID,
			PreferredLanguage: u.PreferredLanguage,
			Role:              model.GroupRoleMember,
			JoinedAt:          now,
		})
	}

	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	if err := s.groups.Save(ctx, g); err != nil {
		return nil, err
	}
	logger.Infof("chat: group created %s", logger.Fields{"id": g.ID, "members": len(g.Members), "creator": creator.ID})
	return g, nil
}

func (s *Service) Group(ctx context.Context, id string) (*model.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// ResolveTarget превращает chatId из URL в адресат: сначала группы, затем пользователи.
func (s *Service) ResolveTarget(ctx context.Context, chatID string) (model.ChatTarget, error) {
	if chatID == "" {
		return model.ChatTarget{}, ErrInvalidTarget
	}
	if _, err := s.groups.GetByID(ctx, chatID); err == nil {
		return model.ChatTarget{GroupID: chatID}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.ChatTarget{}, err
	}
	if _, err := s.users.GetByID(ctx, chatID); err != nil {
		return model.ChatTarget{}, err
	}
	return model.ChatTarget{UserID: chatID}, nil
}

// ReconcileAll доигрывает незавершённые записи журнала всех пользователей.
// Вызывается при старте до приёма запросов.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	defer logger.DeferLogDuration("chat.ReconcileAll", time.Now())()
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		n, err := s.Manager(u.ID).Reconcile(ctx)
		total += n
		if err != nil {
			logger.Errorf("chat: reconcile failed %s", logger.Fields{"owner": u.ID, "err": err})
		}
	}
	if total > 0 {
		logger.Infof("chat: reconciled %d pending intents", total)
	}
	return total, nil
}

type recipient struct {
	UserID   string
	Language string
}

// recipients: получатели отправки без отправителя, в порядке участников группы.
func (s *Service) recipients(ctx context.Context, senderID string, target model.ChatTarget) ([]recipient, error) {
	if !target.IsGroup() {
		peer, err := s.users.GetByID(ctx, target.UserID)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", target.UserID, err)
		}
		return []recipient{{UserID: peer.ID, Language: peer.PreferredLanguage}}, nil
	}
	g, err := s.groups.GetByID(ctx, target.GroupID)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", target.GroupID, err)
	}
	if _, ok := g.Member(senderID); !ok {
		return nil, ErrNotMember
	}
	out := make([]recipient, 0, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == senderID {
			continue
		}
		out = append(out, recipient{UserID: m.UserID, Language: m.PreferredLanguage})
	}
	return out, nil
}
