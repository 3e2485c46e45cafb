package chat

import (
	"context"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/repository"
)

// commit пишет сообщение в лог и обновляет строку разговора так, чтобы снаружи были видны
// оба изменения или ни одного:
//
//  1. запись в intents_<owner>;
//  2. сообщение в messages_<chat> (повтор id: ничего не делаем);
//  3. строка в conversations_<owner>;
//  4. удаление записи журнала.
//
// Ошибка на шаге 3 откатывает шаг 2. Если откат не удался, запись журнала остаётся
// и Reconcile доводит операцию до конца. Вызывать под m.lock().
// Возвращает nil строку, если сообщение уже было в логе.
func (m *Manager) commit(ctx context.Context, kind model.IntentKind, peer model.ChatTarget, msg *model.Message, unreadDelta int) (*model.Conversation, error) {
	chatID := peer.ChatID()
	rows, err := m.convs.List(ctx, m.ownerID)
	if err != nil {
		return nil, err
	}
	i := repository.FindByChat(rows, chatID)
	var row model.Conversation
	if i >= 0 {
		row = rows[i]
	} else {
		row = m.newRow(peer)
	}
	mergeMessage(&row, msg, unreadDelta)

	in := &model.Intent{
		ID:           m.svc.opts.NewID(),
		Kind:         kind,
		ChatID:       chatID,
		Message:      *msg,
		Conversation: row,
		UnreadDelta:  unreadDelta,
		CreatedAt:    m.svc.opts.Clock().UTC(),
	}
	if err := m.intents.Add(ctx, m.ownerID, in); err != nil {
		return nil, err
	}

	appended, err := m.messages.Append(ctx, chatID, msg)
	if err != nil {
		m.dropIntent(ctx, in.ID)
		return nil, err
	}
	if !appended {
		m.dropIntent(ctx, in.ID)
		return nil, nil
	}

	if i >= 0 {
		rows[i] = row
	} else {
		rows = append(rows, row)
	}
	if err := m.convs.Save(ctx, m.ownerID, rows); err != nil {
		if _, _, rerr := m.messages.Remove(ctx, chatID, msg.ID); rerr != nil {
			logger.Errorf("chat: compensation failed, intent kept %s", logger.Fields{"owner": m.ownerID, "intent": in.ID, "err": rerr})
			return nil, err
		}
		m.dropIntent(ctx, in.ID)
		return nil, err
	}
	m.dropIntent(ctx, in.ID)
	return &row, nil
}

// dropIntent не считает ошибку критичной, Reconcile увидит, что операция уже применена.
func (m *Manager) dropIntent(ctx context.Context, id string) {
	if err := m.intents.Remove(ctx, m.ownerID, id); err != nil {
		logger.Errorf("chat: intent remove %s", logger.Fields{"owner": m.ownerID, "intent": id, "err": err})
	}
}

func (m *Manager) newRow(peer model.ChatTarget) model.Conversation {
	return model.Conversation{
		ID:      m.svc.opts.NewID(),
		UserID:  peer.UserID,
		GroupID: peer.GroupID,
		IsGroup: peer.IsGroup(),
	}
}

// mergeMessage: lastMessage меняется только на сообщение не старше текущего.
func mergeMessage(row *model.Conversation, msg *model.Message, unreadDelta int) {
	if row.LastMessage == nil || msg.Timestamp >= row.LastMessage.Timestamp {
		cp := *msg
		row.LastMessage = &cp
	}
	row.UnreadCount += unreadDelta
}

// applied: строка уже отражает сообщение или более новое. Имеет смысл только когда
// сообщение уже было в логе: свежий Append значит, что строку для него не обновляли.
func applied(row *model.Conversation, msg *model.Message) bool {
	if row.LastMessage == nil {
		return false
	}
	return row.LastMessage.ID == msg.ID || row.LastMessage.Timestamp > msg.Timestamp
}

// Reconcile доигрывает записи журнала владельца вперёд: сообщение гарантированно в логе,
// строка разговора отражает его. Доигранная отправка доставляется получателям так же,
// как после обычного Send. Повторный вызов ничего не меняет.
func (m *Manager) Reconcile(ctx context.Context) (int, error) {
	defer logger.DeferLogDuration("chat.Reconcile", time.Now())()
	unlock := m.lock()
	done, sent, err := m.replay(ctx)
	unlock()

	// Доставка вне блокировки владельца: Receive берёт блокировку получателя.
	for i := range sent {
		m.redeliver(ctx, &sent[i])
	}
	return done, err
}

// replay применяет записи журнала и возвращает отправленные сообщения для доставки.
func (m *Manager) replay(ctx context.Context) (int, []model.Message, error) {
	pending, err := m.intents.List(ctx, m.ownerID)
	if err != nil {
		return 0, nil, err
	}
	done := 0
	var sent []model.Message
	for idx := range pending {
		in := &pending[idx]
		appended, err := m.messages.Append(ctx, in.ChatID, &in.Message)
		if err != nil {
			return done, sent, err
		}
		rows, err := m.convs.List(ctx, m.ownerID)
		if err != nil {
			return done, sent, err
		}
		changed := true
		if i := repository.FindByChat(rows, in.ChatID); i < 0 {
			rows = append(rows, in.Conversation)
		} else if !appended && applied(&rows[i], &in.Message) {
			changed = false
		} else {
			mergeMessage(&rows[i], &in.Message, in.UnreadDelta)
		}
		if changed {
			if err := m.convs.Save(ctx, m.ownerID, rows); err != nil {
				return done, sent, err
			}
		}
		if err := m.intents.Remove(ctx, m.ownerID, in.ID); err != nil {
			return done, sent, err
		}
		logger.Infof("chat: intent rolled forward %s", logger.Fields{"owner": m.ownerID, "intent": in.ID, "kind": in.Kind, "chat": in.ChatID})
		if in.Kind == model.IntentSend {
			sent = append(sent, in.Message)
		}
		done++
	}
	return done, sent, nil
}

// redeliver повторяет доставку отправки. Получатель отбрасывает уже известный id.
func (m *Manager) redeliver(ctx context.Context, msg *model.Message) {
	recips, err := m.svc.recipients(ctx, m.ownerID, msg.Target())
	if err != nil {
		logger.Errorf("chat: redelivery skipped %s", logger.Fields{"owner": m.ownerID, "msg": msg.ID, "err": err})
		return
	}
	for _, r := range recips {
		if err := m.svc.Manager(r.UserID).Receive(ctx, *msg); err != nil {
			logger.Errorf("chat: redelivery failed %s", logger.Fields{"from": m.ownerID, "to": r.UserID, "msg": msg.ID, "err": err})
		}
	}
}
