package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(calculator.MinorUnitPlaces)
}

func toAPIUser(u models.User) api.User {
	return api.User{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toAPIExpense(e *models.Expense) api.Expense {
	out := api.Expense{
		ID:             e.ID,
		Title:          e.Title,
		Date:           e.Date,
		TotalAmount:    money(e.TotalAmount),
		PaidByID:       e.PaidByID,
		SplitMethod:    string(e.SplitMethod),
		Participants:   make([]api.Participant, len(e.Participants)),
		IsFullySettled: e.IsFullySettled,
		Version:        e.Version,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	for i, p := range e.Participants {
		out.Participants[i] = api.Participant{
			UserID:      p.UserID,
			ShareAmount: money(p.ShareAmount),
			IsSettled:   p.IsSettled,
		}
	}
	return out
}

func toAPIHydratedExpense(h *models.HydratedExpense) api.Expense {
	out := toAPIExpense(&h.Expense)
	out.PaidByName = h.PaidBy.Name
	for i, p := range h.Participants {
		out.Participants[i].UserName = p.User.Name
	}
	return out
}

func toAPIDebts(debts []models.Debt) []api.Debt {
	out := make([]api.Debt, len(debts))
	for i, d := range debts {
		out[i] = api.Debt{UserID: d.UserID, UserName: d.UserName, Amount: money(d.Amount)}
	}
	return out
}

func toAPIBalance(b models.UserBalance) api.UserBalance {
	return api.UserBalance{
		UserID:    b.UserID,
		UserName:  b.UserName,
		NetAmount: money(b.NetAmount),
		Owes:      toAPIDebts(b.Owes),
		OwedBy:    toAPIDebts(b.OwedBy),
	}
}
