package controllers

import (
	"net/http"

	"fooddelivery/models"
	"fooddelivery/utils"
)

func CreateOrder(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.CreateOrderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	order, err := svc.Orders.PlaceOrder(r.Context(), a.UserID, req)
	if err != nil {
		fail(w, r, err)
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"order":   order,
		"message": "Order placed successfully.",
	})
}

func ListOrders(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := svc.Orders.List(r.Context(), a.UserID, queryPage(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, page)
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	order, err := svc.Orders.Get(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, order)
}

func CancelOrder(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	order, err := svc.Orders.Cancel(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"order":   order,
		"message": "Order cancelled successfully.",
	})
}

func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.UpdateStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	order, err := svc.Orders.UpdateStatus(r.Context(), a, id, req.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, order)
}

func RateOrder(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.RateOrderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	order, err := svc.Orders.Rate(r.Context(), a.UserID, id, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"order":   order,
		"message": "Thank you for rating your order.",
	})
}

func DriverDistance(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := svc.Orders.DriverDistance(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, d)
}
