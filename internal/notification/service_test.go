package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestListForMarksRead(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM notifications n JOIN users u`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "read", "created_at", "from_id", "username", "profile_img"}).
			AddRow("notif-1", "follow", false, time.Now(), "user-2", "bob", "").
			AddRow("notif-2", "like", true, time.Now(), "user-3", "carol", ""))
	mock.ExpectExec(`UPDATE notifications SET read=true WHERE to_id=`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	list, err := svc.ListFor(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	// The returned flags reflect the state before the mark.
	if list[0].Read || !list[1].Read {
		t.Fatalf("unexpected read flags %+v", list)
	}
	if list[0].From.Username != "bob" || list[0].To != "user-1" {
		t.Fatalf("unexpected notification %+v", list[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListForEmpty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM notifications n JOIN users u`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "read", "created_at", "from_id", "username", "profile_img"}))
	mock.ExpectExec(`UPDATE notifications SET read=true WHERE to_id=`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	svc := NewService(mock)
	list, err := svc.ListFor(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", list)
	}
}

func TestDeleteAllFor(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM notifications WHERE to_id=`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	svc := NewService(mock)
	if err := svc.DeleteAllFor(context.Background(), "user-1"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAllForPropagatesError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM notifications WHERE to_id=`).
		WithArgs("user-1").
		WillReturnError(errors.New("db down"))

	svc := NewService(mock)
	if err := svc.DeleteAllFor(context.Background(), "user-1"); err == nil {
		t.Fatal("expected an error")
	}
}
