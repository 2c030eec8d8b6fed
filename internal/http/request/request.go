// Package request содержит разбор параметров HTTP-запроса: тела JSON,
// идентификаторов из пути и параметров пагинации.
package request

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
)

// DecodeJSON разбирает тело запроса в v. Неизвестные поля игнорируются.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return response.InvalidBody(err)
	}
	return nil
}

// ID читает положительный целый идентификатор из параметра пути.
func ID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, response.InvalidID(param)
	}
	return id, nil
}

// Page читает skip и limit из строки запроса. Отсутствующие и некорректные
// значения заменяются значениями по умолчанию.
func Page(r *http.Request, defaultLimit int) (skip, limit int) {
	q := r.URL.Query()
	skip, _ = strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if skip < 0 {
		skip = 0
	}
	return skip, limit
}
