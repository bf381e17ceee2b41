package calculator_application

import (
	"context"

	log "github.com/sirupsen/logrus"

	db "github.com/ERRORIK404/Session_Calculator/database"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

type History struct {
	db         *db.DB
	guestLimit int
}

func NewHistory(database *db.DB, limits Limits) *History {
	return &History{db: database, guestLimit: limits.GuestHistory}
}

// List возвращает историю от новых записей к старым. Гость без сессии получает пустой список.
func (h *History) List(ctx context.Context, caller Caller) ([]models.CalculationRecord, error) {
	if userID, ok := caller.UserID(); ok {
		return h.db.Records().ListRecords(ctx, models.UserOwner{UserID: userID}, 0)
	}

	key := caller.SessionKey()
	if key == "" {
		return []models.CalculationRecord{}, nil
	}
	if h.guestLimit == 0 {
		return []models.CalculationRecord{}, nil
	}
	return h.db.Records().ListRecords(ctx, models.GuestOwner{SessionKey: key}, h.guestLimit)
}

// Clear удаляет всю историю пользователя. Гостям недоступно.
func (h *History) Clear(ctx context.Context, caller Caller) (int64, error) {
	userID, ok := caller.UserID()
	if !ok {
		return 0, locerr.ErrAuthenticationRequired
	}
	n, err := h.db.Records().ClearRecords(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"user_id": userID, "deleted": n}).Info("history cleared")
	return n, nil
}

// Delete удаляет одну запись пользователя. Чужая и несуществующая запись дают одну и ту же ошибку.
func (h *History) Delete(ctx context.Context, caller Caller, id int64) error {
	userID, ok := caller.UserID()
	if !ok {
		return locerr.ErrAuthenticationRequired
	}
	deleted, err := h.db.Records().DeleteRecord(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return locerr.ErrNotFound
	}
	return nil
}
