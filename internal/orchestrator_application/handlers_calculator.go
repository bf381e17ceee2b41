package orchestrator_application

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	calc "github.com/ERRORIK404/Session_Calculator/internal/calculator_application"
	structs "github.com/ERRORIK404/Session_Calculator/pkg/structs"
)

func (o *Orchestrator) calculateHandler(w http.ResponseWriter, r *http.Request) {
	var body structs.CalculateRequest
	if isForm(r) {
		var form structs.CalculateForm
		if err := decodeForm(o.decoder, r, &form); err != nil {
			fail(w, r, err)
			return
		}
		body = form.Request()
	} else if err := decodeJSON(w, r, &body); err != nil {
		fail(w, r, err)
		return
	}

	record, err := o.calculator.Calculate(r.Context(), sessionFrom(r), calc.Request{
		Operand1: body.Operand1,
		Operand2: body.Operand2,
		Operator: body.Operator,
		Note:     body.Note,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, structs.CalculateResponse{Saved: true, Result: record.Result})
}

func (o *Orchestrator) historyHandler(w http.ResponseWriter, r *http.Request) {
	records, err := o.history.List(r.Context(), sessionFrom(r))
	if err != nil {
		failDetail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, structs.NewHistory(records))
}

func (o *Orchestrator) clearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := o.history.Clear(r.Context(), sessionFrom(r)); err != nil {
		failDetail(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "History cleared successfully")
}

func (o *Orchestrator) deleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		// такой записи быть не может, но гость все равно должен получить 403
		id = 0
	}
	if err := o.history.Delete(r.Context(), sessionFrom(r), id); err != nil {
		failDetail(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "History item deleted")
}
