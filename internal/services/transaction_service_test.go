package services

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store/memory"
)

type fakePublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *fakePublisher) PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func validInput() AddTransactionInput {
	return AddTransactionInput{
		Type:        core.TypeExpense,
		Amount:      "50",
		Description: "groceries",
		Date:        core.NewDate(2025, 8, 10),
	}
}

func TestAddExpenseStoresNegativeAmount(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil)
	sess := &auth.Session{UserID: "u1"}

	res, err := svc.Add(context.Background(), sess, validInput())
	if err != nil || !res.Success {
		t.Fatalf("add failed: %+v, %v", res, err)
	}

	txs, _ := st.ListTransactions(context.Background(), "u1")
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Amount.Cents != -5000 {
		t.Fatalf("expense of 50 stored as %d cents, want -5000", txs[0].Amount.Cents)
	}
}

func TestAddIncomeStoresPositiveAmount(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil)

	input := validInput()
	input.Type = core.TypeIncome
	input.Amount = "1000"

	res, err := svc.Add(context.Background(), &auth.Session{UserID: "u1"}, input)
	if err != nil || !res.Success {
		t.Fatalf("add failed: %+v, %v", res, err)
	}

	txs, _ := st.ListTransactions(context.Background(), "u1")
	if txs[0].Amount.Cents != 100000 {
		t.Fatalf("income of 1000 stored as %d cents, want 100000", txs[0].Amount.Cents)
	}
}

func TestAddWithoutSessionFailsLoud(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)

	res, err := svc.Add(context.Background(), nil, validInput())
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if res.Success {
		t.Fatal("unauthorized add must not report success")
	}
}

func TestAddInvalidAmountReturnsResultNotError(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)

	input := validInput()
	input.Amount = "not a number"

	res, err := svc.Add(context.Background(), &auth.Session{UserID: "u1"}, input)
	if err != nil {
		t.Fatalf("validation failures surface in the result, not as error: %v", err)
	}
	if res.Success || res.Message != "invalid amount" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAddPublishesCreatedEvent(t *testing.T) {
	st := memory.New()
	pub := &fakePublisher{}
	svc := NewTransactionService(st, pub)

	if res, _ := svc.Add(context.Background(), &auth.Session{UserID: "u1"}, validInput()); !res.Success {
		t.Fatalf("add failed: %+v", res)
	}
	if len(pub.events) != 1 || pub.events[0].Event != amqp.EventCreated {
		t.Fatalf("expected one created event, got %+v", pub.events)
	}
}

func TestAddSurvivesPublishFailure(t *testing.T) {
	st := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(st, pub)

	res, err := svc.Add(context.Background(), &auth.Session{UserID: "u1"}, validInput())
	if err != nil || !res.Success {
		t.Fatalf("publish failure must not fail the write: %+v, %v", res, err)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil)
	owner := &auth.Session{UserID: "u1"}
	other := &auth.Session{UserID: "u2"}

	svc.Add(context.Background(), owner, validInput())
	txs, _ := st.ListTransactions(context.Background(), "u1")
	id := txs[0].ID

	if res, _ := svc.Delete(context.Background(), other, id); res.Success {
		t.Fatal("delete must not succeed for another user's transaction")
	}
	if res, _ := svc.Delete(context.Background(), owner, id); !res.Success {
		t.Fatalf("owner delete failed: %+v", res)
	}
}

func TestListFiltersByTabAndSearch(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil)
	sess := &auth.Session{UserID: "u1"}

	add := func(typ core.TransactionType, amount, desc, catID string) {
		input := AddTransactionInput{
			Type: typ, Amount: amount, Description: desc,
			CategoryID: catID, Date: core.NewDate(2025, 8, 1),
		}
		if res, err := svc.Add(context.Background(), sess, input); err != nil || !res.Success {
			t.Fatalf("seed add failed: %+v, %v", res, err)
		}
	}
	add(core.TypeIncome, "1000", "Salary", "")
	add(core.TypeExpense, "85", "Grocery run", "c1")
	add(core.TypeExpense, "12", "Coffee", "")

	cats := map[string]core.Category{"c1": {ID: "c1", Name: "Food"}}

	if got := svc.List(context.Background(), sess, cats, core.TabIncome, ""); len(got) != 1 {
		t.Fatalf("income tab: got %d, want 1", len(got))
	}
	if got := svc.List(context.Background(), sess, cats, core.TabExpense, ""); len(got) != 2 {
		t.Fatalf("expense tab: got %d, want 2", len(got))
	}
	if got := svc.List(context.Background(), sess, cats, core.TabAll, "food"); len(got) != 1 {
		t.Fatalf("category-name search: got %d, want 1", len(got))
	}
	if got := svc.List(context.Background(), sess, cats, core.TabAll, "coffee"); len(got) != 1 {
		t.Fatalf("description search: got %d, want 1", len(got))
	}
	if got := svc.List(context.Background(), nil, cats, core.TabAll, ""); got != nil {
		t.Fatal("missing session must degrade to empty list")
	}
}
