package controllers

import (
	"net/http"

	"fooddelivery/models"
	"fooddelivery/utils"
)

func AdminListRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := svc.Restaurants.AdminList(r.Context(), queryPage(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, page)
}

func AddRestaurant(w http.ResponseWriter, r *http.Request) {
	var req models.RestaurantRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	restaurant, err := svc.Restaurants.Create(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, restaurant)
}

func UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.RestaurantRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	restaurant, err := svc.Restaurants.Update(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, restaurant)
}

func DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Restaurants.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	message(w, "Restaurant deleted successfully.")
}

func AddMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.MenuItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	item, err := svc.Restaurants.CreateMenuItem(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, item)
}

func UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Menu item not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.MenuItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	item, err := svc.Restaurants.UpdateMenuItem(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, item)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Menu item not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Restaurants.DeleteMenuItem(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	message(w, "Menu item deleted successfully.")
}

func ApproveDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Driver not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := svc.Drivers.Approve(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, d)
}

func AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Order not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.AssignDriverRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	order, err := svc.Orders.AssignDriver(r.Context(), id, req.DriverID)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, order)
}
