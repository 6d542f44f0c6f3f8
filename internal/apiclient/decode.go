package apiclient

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The backend's domain services disagree on casing and number encoding:
// product fields arrive as nombre or Nombre, prices as numbers or numeric
// strings, stock sometimes as {"Value": n}. These helpers accept exactly
// the enumerated variants and nothing else.

type rawObject map[string]json.RawMessage

func (o rawObject) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && !isJSONNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func coerceString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func coerceFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceInt(raw json.RawMessage) (int, bool) {
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		return i, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	// stock a veces llega envuelto como {"Value": n}
	var wrapped struct {
		Value *int `json:"Value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Value != nil {
		return *wrapped.Value, true
	}
	return 0, false
}

func decodeProduct(raw json.RawMessage) (Product, error) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Product{}, &DecodeError{What: "el producto no es un objeto JSON"}
	}

	var p Product

	idRaw, ok := obj.pick("id", "Id")
	if !ok {
		return Product{}, &DecodeError{What: "el producto no tiene id"}
	}
	if p.ID, ok = coerceString(idRaw); !ok {
		return Product{}, &DecodeError{What: "id de producto ilegible"}
	}

	if v, ok := obj.pick("nombre", "Nombre"); ok {
		if p.Nombre, ok = coerceString(v); !ok {
			return Product{}, &DecodeError{What: "nombre de producto ilegible"}
		}
	}
	if v, ok := obj.pick("marca", "Marca"); ok {
		if p.Marca, ok = coerceString(v); !ok {
			return Product{}, &DecodeError{What: "marca de producto ilegible"}
		}
	}
	if v, ok := obj.pick("precio", "Precio"); ok {
		if p.Precio, ok = coerceFloat(v); !ok {
			return Product{}, &DecodeError{What: "precio de producto ilegible"}
		}
	}
	if v, ok := obj.pick("stock", "Stock"); ok {
		if p.Stock, ok = coerceInt(v); !ok {
			return Product{}, &DecodeError{What: "stock de producto ilegible"}
		}
	}

	return p, nil
}

func decodeUser(raw json.RawMessage) (User, error) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return User{}, &DecodeError{What: "el usuario no es un objeto JSON"}
	}

	var u User

	idRaw, ok := obj.pick("id", "Id", "user_id", "userId")
	if !ok {
		return User{}, &DecodeError{What: "el usuario no tiene id"}
	}
	if u.ID, ok = coerceString(idRaw); !ok {
		return User{}, &DecodeError{What: "id de usuario ilegible"}
	}

	if v, ok := obj.pick("email"); ok {
		if u.Email, ok = coerceString(v); !ok {
			return User{}, &DecodeError{What: "email de usuario ilegible"}
		}
	}
	if v, ok := obj.pick("username", "name"); ok {
		if u.Username, ok = coerceString(v); !ok {
			return User{}, &DecodeError{What: "username de usuario ilegible"}
		}
	}
	if v, ok := obj.pick("rol", "role"); ok {
		if u.Rol, ok = coerceString(v); !ok {
			return User{}, &DecodeError{What: "rol de usuario ilegible"}
		}
	}

	return u, nil
}
