package controllers

import (
	"net/http"

	"fooddelivery/models"
	"fooddelivery/utils"
)

func Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	res, err := svc.Users.Signup(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, res)
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	res, err := svc.Users.Login(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, res)
}

func ListAddresses(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := svc.Addresses.List(r.Context(), a.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if list == nil {
		list = []models.CustomerAddress{}
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{"data": list})
}

func CreateAddress(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.AddressRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	ca, err := svc.Addresses.Create(r.Context(), a.UserID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, ca)
}

func DeleteAddress(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Address not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Addresses.Delete(r.Context(), a.UserID, id); err != nil {
		fail(w, r, err)
		return
	}
	message(w, "Address deleted successfully.")
}

func RegisterDriver(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.DriverRegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	d, err := svc.Drivers.Register(r.Context(), a.UserID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, d)
}

func UpdateDriverStatus(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.DriverStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	d, err := svc.Drivers.UpdateStatus(r.Context(), a.UserID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, d)
}
