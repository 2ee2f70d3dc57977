package validators

import (
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/google/uuid"
)

// CartID validates the cid path value.
func CartID(raw, message string) (uuid.UUID, error) {
	id, ok := parseID(raw)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidIDs, message).
			WithName("Invalid Id Error").
			WithCause(pkgerrors.CartIDCause(raw))
	}
	return id, nil
}

// CartAndProductIDs validates the cid and pid path values together.
func CartAndProductIDs(cid, pid, message string) (uuid.UUID, uuid.UUID, error) {
	cartID, cartOK := parseID(cid)
	productID, productOK := parseID(pid)
	if !cartOK || !productOK {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidIDs, message).
			WithName("Invalid Ids Error").
			WithCause(pkgerrors.InvalidIDsCause(map[string]string{"cid": cid, "pid": pid}))
	}
	return cartID, productID, nil
}

func parseID(raw string) (uuid.UUID, bool) {
	if err := validate.Var(raw, "required,uuid_any_case"); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
